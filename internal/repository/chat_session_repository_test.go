package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"campus-info-go/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 24 * time.Hour

func newRedisRepo(t *testing.T) (ChatSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisChatSessionRepository(rdb, testTTL), mr
}

func sessionRepos(t *testing.T) map[string]ChatSessionRepository {
	redisRepo, _ := newRedisRepo(t)
	return map[string]ChatSessionRepository{
		"memory": NewMemoryChatSessionRepository(testTTL),
		"redis":  redisRepo,
	}
}

func newSession(id string, userID int64, at time.Time) *model.ChatSession {
	return &model.ChatSession{
		ID:           id,
		UserID:       userID,
		CreatedAt:    at,
		LastActivity: at,
		Messages: []model.ChatMessage{{
			ID: id + "-welcome", Role: model.RoleBotMessage, Content: "welcome", Timestamp: at,
		}},
	}
}

func TestChatSessionRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Create(ctx, newSession("s1", 7, now)))

			got, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, int64(7), got.UserID)
			require.Len(t, got.Messages, 1)
			assert.Equal(t, "welcome", got.Messages[0].Content)

			later := now.Add(time.Minute)
			err = repo.Append(ctx, "s1", later,
				model.ChatMessage{ID: "u1", Role: model.RoleUserMessage, Content: "hi", Timestamp: later},
				model.ChatMessage{ID: "b1", Role: model.RoleBotMessage, Content: "hello", Timestamp: later,
					Metadata: &model.MessageMetadata{Intent: "general"}},
			)
			require.NoError(t, err)

			got, err = repo.Get(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, got.Messages, 3)
			assert.Equal(t, []string{"welcome", "hi", "hello"},
				[]string{got.Messages[0].Content, got.Messages[1].Content, got.Messages[2].Content})
			require.NotNil(t, got.Messages[2].Metadata)
			assert.Equal(t, "general", got.Messages[2].Metadata.Intent)
			assert.True(t, got.LastActivity.Equal(later))
			assert.True(t, got.CreatedAt.Equal(now))

			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, repo.Delete(ctx, "s1"))
			_, err = repo.Get(ctx, "s1")
			assert.True(t, errors.Is(err, ErrSessionNotFound))
			assert.True(t, errors.Is(repo.Delete(ctx, "s1"), ErrSessionNotFound))
			assert.True(t, errors.Is(repo.Append(ctx, "s1", later), ErrSessionNotFound))
		})
	}
}

func TestMemoryChatSessionRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatSessionRepository(testTTL)
	require.NoError(t, repo.Create(ctx, newSession("s1", 1, time.Now())))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	got.Messages[0].Content = "tampered"
	got.Messages = append(got.Messages, model.ChatMessage{ID: "x"})

	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "welcome", again.Messages[0].Content)
}

func TestMemoryChatSessionRepository_SweepRemovesIdleSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatSessionRepository(testTTL)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newSession("stale", 1, now.Add(-25*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("fresh", 2, now.Add(-23*time.Hour))))

	removed, err := repo.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.Get(ctx, "stale")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = repo.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryChatSessionRepository_ConcurrentAppendKeepsAllMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatSessionRepository(testTTL)
	require.NoError(t, repo.Create(ctx, newSession("s1", 1, time.Now())))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Append(ctx, "s1", time.Now(),
				model.ChatMessage{ID: fmt.Sprintf("u%d", i), Role: model.RoleUserMessage},
				model.ChatMessage{ID: fmt.Sprintf("b%d", i), Role: model.RoleBotMessage},
			)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = repo.Sweep(ctx, time.Now())
	}()
	wg.Wait()

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 101)
	// 每一对 user/bot 消息必须相邻
	for i := 1; i < len(got.Messages); i += 2 {
		assert.Equal(t, "u", got.Messages[i].ID[:1])
		assert.Equal(t, "b"+got.Messages[i].ID[1:], got.Messages[i+1].ID)
	}
}

func TestRedisChatSessionRepository_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newSession("s1", 1, now)))

	mr.FastForward(23 * time.Hour)
	require.NoError(t, repo.Append(ctx, "s1", now.Add(23*time.Hour)))

	// 追加消息会续期，再过 23 小时仍然存在
	mr.FastForward(23 * time.Hour)
	_, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)
	_, err = repo.Get(ctx, "s1")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	removed, err := repo.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMemoryChatSessionRepository_AppendAfterRemovalFails(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	msg := model.ChatMessage{ID: "u1", Role: model.RoleUserMessage}

	t.Run("delete", func(t *testing.T) {
		repo := NewMemoryChatSessionRepository(testTTL).(*memoryChatSessionRepository)
		require.NoError(t, repo.Create(ctx, newSession("s1", 1, now)))
		// 写入方先拿到条目，随后会话被删除
		e, ok := repo.entry("s1")
		require.True(t, ok)
		require.NoError(t, repo.Delete(ctx, "s1"))

		assert.ErrorIs(t, e.append(now, []model.ChatMessage{msg}), ErrSessionNotFound)
	})

	t.Run("sweep", func(t *testing.T) {
		repo := NewMemoryChatSessionRepository(testTTL).(*memoryChatSessionRepository)
		require.NoError(t, repo.Create(ctx, newSession("s1", 1, now.Add(-25*time.Hour))))
		e, ok := repo.entry("s1")
		require.True(t, ok)
		removed, err := repo.Sweep(ctx, now)
		require.NoError(t, err)
		require.Equal(t, 1, removed)

		assert.ErrorIs(t, e.append(now, []model.ChatMessage{msg}), ErrSessionNotFound)
		assert.ErrorIs(t, repo.Append(ctx, "s1", now, msg), ErrSessionNotFound)
	})
}
