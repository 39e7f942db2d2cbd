package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// RedisConversationRepository persists per-conversation history as a Redis
// list of JSON messages and accumulated preferences as a hash of JSON values.
type RedisConversationRepository struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	maxTurns int
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, maxTurns: maxTurns}
}

func (r *RedisConversationRepository) messagesKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

func (r *RedisConversationRepository) preferencesKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:preferences", conversationID)
}

// AddExchange appends the user/assistant pair atomically and trims the list
// so stored history never exceeds 2*maxTurns messages. Trimming an
// already-trimmed list is a no-op.
func (r *RedisConversationRepository) AddExchange(ctx context.Context, conversationID string, user, assistant *schema.Message) error {
	userB, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user message: %w", err)
	}
	assistantB, err := json.Marshal(assistant)
	if err != nil {
		return fmt.Errorf("marshal assistant message: %w", err)
	}

	key := r.messagesKey(conversationID)
	window := int64(2 * r.maxTurns)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, userB, assistantB)
	pipe.LTrim(ctx, key, -window, -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to commit exchange to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) LoadRecent(ctx context.Context, conversationID string, maxTurns int) (*model.ConversationHistory, error) {
	key := r.messagesKey(conversationID)

	window := int64(2 * maxTurns)
	rows, err := r.rdb.LRange(ctx, key, -window, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *RedisConversationRepository) LoadPreferences(ctx context.Context, conversationID string) (map[string]any, error) {
	key := r.preferencesKey(conversationID)

	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return map[string]any{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load preferences from redis")
		return nil, errx.WrapRedis(err)
	}

	prefs := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			// Tolerate a corrupt field; the rest of the map is still usable.
			logx.Warn().Str("key", key).Str("field", k).Msg("skipping undecodable preference value")
			continue
		}
		prefs[k] = v
	}
	return prefs, nil
}

func (r *RedisConversationRepository) SavePreferences(ctx context.Context, conversationID string, prefs map[string]any) error {
	if len(prefs) == 0 {
		return nil
	}
	key := r.preferencesKey(conversationID)

	values := make([]any, 0, 2*len(prefs))
	for k, v := range prefs {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal preference %q: %w", k, err)
		}
		values = append(values, k, b)
	}

	if err := r.rdb.HSet(ctx, key, values...).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save preferences to redis")
		return errx.WrapRedis(err)
	}
	r.touch(ctx, key)
	return nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	if err := r.rdb.Del(ctx, r.messagesKey(conversationID), r.preferencesKey(conversationID)).Err(); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to delete conversation state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// touch extends the TTL on write so active conversations stay warm.
func (r *RedisConversationRepository) touch(ctx context.Context, key string) {
	if r.ttl <= 0 {
		return
	}
	if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to set expire")
	} else if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
	}
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
