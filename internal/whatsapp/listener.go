package whatsapp

import (
	"context"
	"time"

	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// Handler produces a reply for one inbound message. Returning an empty reply
// suppresses the response without error.
type Handler func(ctx context.Context, chatID, text string) (string, error)

// Listener polls the bridge for new messages and routes each one through the
// handler, sending the reply back to the originating chat.
type Listener struct {
	client   *Client
	handler  Handler
	interval time.Duration

	lastMessageID string
	knownChats    map[string]bool
}

func NewListener(client *Client, handler Handler, interval time.Duration) *Listener {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Listener{
		client:     client,
		handler:    handler,
		interval:   interval,
		knownChats: make(map[string]bool),
	}
}

// Run polls until the context is cancelled. Poll and handler errors are
// logged and skipped; one bad message never stalls the loop.
func (l *Listener) Run(ctx context.Context) error {
	logx.Info().
		Dur("poll_interval", l.interval).
		Msg("WhatsApp listener started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.pollOnce(ctx)

		select {
		case <-ctx.Done():
			logx.Info().Msg("WhatsApp listener stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Listener) pollOnce(ctx context.Context) {
	messages, err := l.client.ListMessages(ctx, l.lastMessageID)
	if err != nil {
		logx.Warn().Err(err).Msg("message poll failed")
		return
	}
	if len(messages) == 0 {
		return
	}
	l.lastMessageID = messages[len(messages)-1].ID

	for _, msg := range messages {
		// The bridge echoes our own outbound messages back with sender "self".
		if msg.Sender == "self" {
			continue
		}

		l.greetChat(ctx, msg.ChatID)

		reply, err := l.handler(ctx, msg.ChatID, msg.Content)
		if err != nil {
			logx.Error().
				Str("chat_id", msg.ChatID).
				Str("message_id", msg.ID).
				Err(err).
				Msg("message handler failed")
			continue
		}
		if reply == "" {
			continue
		}

		if err := l.client.SendMessage(ctx, msg.ChatID, reply); err != nil {
			logx.Error().
				Str("chat_id", msg.ChatID).
				Err(err).
				Msg("reply delivery failed")
		}
	}
}

// greetChat looks up bridge metadata the first time a chat is seen so the
// logs carry the customer's name. Lookup failures are not fatal; the chat is
// still marked known.
func (l *Listener) greetChat(ctx context.Context, chatID string) {
	if l.knownChats[chatID] {
		return
	}
	l.knownChats[chatID] = true

	info, err := l.client.GetChat(ctx, chatID)
	if err != nil {
		logx.Warn().Str("chat_id", chatID).Err(err).Msg("chat info lookup failed")
		return
	}
	if info == nil {
		logx.Info().Str("chat_id", chatID).Msg("new conversation")
		return
	}
	logx.Info().Str("chat_id", chatID).Str("name", info.Name).Msg("new conversation")
}
