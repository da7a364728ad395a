package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campus-info-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// redisChatSessionRepository 把会话元数据存为 hash、消息存为 list，依赖 key 过期代替定时清理。
type redisChatSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewRedisChatSessionRepository 创建一个基于 Redis 的会话注册表，可在多进程间共享。
func NewRedisChatSessionRepository(redisClient *redis.Client, ttl time.Duration) ChatSessionRepository {
	return &redisChatSessionRepository{redisClient: redisClient, ttl: ttl}
}

const sessionKeyPrefix = "chat:session:"

func sessionKey(id string) string  { return sessionKeyPrefix + id }
func messagesKey(id string) string { return "chat:messages:" + id }

func (r *redisChatSessionRepository) Create(ctx context.Context, session *model.ChatSession) error {
	meta := map[string]interface{}{
		"id":            session.ID,
		"user_id":       strconv.FormatInt(session.UserID, 10),
		"created_at":    session.CreatedAt.Format(time.RFC3339Nano),
		"last_activity": session.LastActivity.Format(time.RFC3339Nano),
	}
	encoded, err := encodeMessages(session.Messages)
	if err != nil {
		return err
	}
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, sessionKey(session.ID), meta)
		pipe.Expire(ctx, sessionKey(session.ID), r.ttl)
		if len(encoded) > 0 {
			pipe.RPush(ctx, messagesKey(session.ID), encoded...)
			pipe.Expire(ctx, messagesKey(session.ID), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (r *redisChatSessionRepository) Get(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	meta, err := r.redisClient.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	if len(meta) == 0 {
		return nil, ErrSessionNotFound
	}
	raw, err := r.redisClient.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	s := &model.ChatSession{ID: meta["id"], Messages: make([]model.ChatMessage, 0, len(raw))}
	if s.UserID, err = strconv.ParseInt(meta["user_id"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, meta["created_at"]); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	if s.LastActivity, err = time.Parse(time.RFC3339Nano, meta["last_activity"]); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	for _, item := range raw {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		s.Messages = append(s.Messages, msg)
	}
	return s, nil
}

// Append 在 WATCH 事务里确认会话仍存在，再追加消息并续期。
func (r *redisChatSessionRepository) Append(ctx context.Context, sessionID string, at time.Time, messages ...model.ChatMessage) error {
	encoded, err := encodeMessages(messages)
	if err != nil {
		return err
	}
	key := sessionKey(sessionID)
	err = r.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrSessionNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(encoded) > 0 {
				pipe.RPush(ctx, messagesKey(sessionID), encoded...)
			}
			pipe.HSet(ctx, key, "last_activity", at.Format(time.RFC3339Nano))
			pipe.Expire(ctx, key, r.ttl)
			pipe.Expire(ctx, messagesKey(sessionID), r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, ErrSessionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to append chat messages: %w", err)
	}
	return nil
}

func (r *redisChatSessionRepository) Delete(ctx context.Context, sessionID string) error {
	n, err := r.redisClient.Del(ctx, sessionKey(sessionID), messagesKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Sweep 由 Redis 的 key 过期负责，这里无事可做。
func (r *redisChatSessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (r *redisChatSessionRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.redisClient.Keys(ctx, sessionKeyPrefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan chat session keys: %w", err)
	}
	return len(keys), nil
}

func encodeMessages(messages []model.ChatMessage) ([]interface{}, error) {
	out := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chat message: %w", err)
		}
		out = append(out, data)
	}
	return out, nil
}
