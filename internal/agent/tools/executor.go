package tools

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

const defaultCallTimeout = 10 * time.Second

// Executor runs a batch of planner-requested tool invocations. Calls run
// concurrently, each under its own timeout, and every failure is converted
// to a tagged result in that call's slot: one bad call never aborts its
// siblings.
type Executor struct {
	registry    *Registry
	callTimeout time.Duration
	maxCalls    int
}

func NewExecutor(registry *Registry, callTimeout time.Duration, maxCalls int) *Executor {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Executor{
		registry:    registry,
		callTimeout: callTimeout,
		maxCalls:    maxCalls,
	}
}

// Run resolves every invocation to a ToolResult, in the order received.
// The returned slice always has len(calls) entries.
func (e *Executor) Run(ctx context.Context, calls []model.ToolInvocation) []model.ToolResult {
	results := make([]model.ToolResult, len(calls))

	g, gctx := errgroup.Group{}, ctx
	for i := range calls {
		idx := i
		call := calls[i]
		g.Go(func() error {
			results[idx] = e.runOne(gctx, idx, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) runOne(ctx context.Context, idx int, call model.ToolInvocation) (res model.ToolResult) {
	res = model.ToolResult{Tool: call.Name}

	// A panicking tool is still just one failed call.
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("tool", call.Name).Msgf("tool panic recovered: %v", r)
			res.Result = nil
			res.Error = fmt.Sprintf("tool panic: %v", r)
		}
	}()

	if e.maxCalls > 0 && idx >= e.maxCalls {
		res.Error = fmt.Sprintf("tool call limit reached (%d)", e.maxCalls)
		return res
	}

	kind, err := ParseKind(call.Name)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	started := time.Now()
	out, err := e.registry.Dispatch(callCtx, kind, call.Arguments)
	if err != nil {
		logx.Warn().
			Str("tool", call.Name).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("tool call failed")
		res.Error = err.Error()
		return res
	}

	logx.Debug().
		Str("tool", call.Name).
		Dur("elapsed", time.Since(started)).
		Msg("tool call succeeded")
	res.Result = out
	return res
}
