// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"campus-info-go/internal/model"
)

// ErrSessionNotFound 表示会话不存在或已过期。
var ErrSessionNotFound = errors.New("chat session not found")

// ChatSessionRepository 定义了聊天会话注册表的操作接口。
type ChatSessionRepository interface {
	Create(ctx context.Context, session *model.ChatSession) error
	Get(ctx context.Context, sessionID string) (*model.ChatSession, error)
	// Append 原子地追加一批消息并刷新 last_activity。
	Append(ctx context.Context, sessionID string, at time.Time, messages ...model.ChatMessage) error
	Delete(ctx context.Context, sessionID string) error
	// Sweep 删除空闲超过 TTL 的会话，返回删除数量。
	Sweep(ctx context.Context, now time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

type sessionEntry struct {
	mu      sync.Mutex
	session model.ChatSession
	removed bool // Delete 或 Sweep 之后置位，持有旧指针的写入据此失败
}

func (e *sessionEntry) append(at time.Time, messages []model.ChatMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrSessionNotFound
	}
	e.session.Messages = append(e.session.Messages, messages...)
	e.session.LastActivity = at
	return nil
}

// memoryChatSessionRepository 是单进程内存实现，每个会话一把锁。
type memoryChatSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

// NewMemoryChatSessionRepository 创建内存会话注册表，过期会话由 Sweep 清理。
func NewMemoryChatSessionRepository(ttl time.Duration) ChatSessionRepository {
	return &memoryChatSessionRepository{sessions: make(map[string]*sessionEntry), ttl: ttl}
}

func copySession(s *model.ChatSession) *model.ChatSession {
	out := *s
	out.Messages = append([]model.ChatMessage(nil), s.Messages...)
	return &out
}

func (r *memoryChatSessionRepository) entry(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (r *memoryChatSessionRepository) Create(ctx context.Context, session *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = &sessionEntry{session: *copySession(session)}
	return nil
}

func (r *memoryChatSessionRepository) Get(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	e, ok := r.entry(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrSessionNotFound
	}
	return copySession(&e.session), nil
}

func (r *memoryChatSessionRepository) Append(ctx context.Context, sessionID string, at time.Time, messages ...model.ChatMessage) error {
	e, ok := r.entry(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return e.append(at, messages)
}

func (r *memoryChatSessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *memoryChatSessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := now.Sub(e.session.LastActivity) > r.ttl
		if idle {
			e.removed = true
		}
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memoryChatSessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
