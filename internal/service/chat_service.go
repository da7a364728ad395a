package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-info-go/internal/agent"
	"campus-info-go/internal/model"
	"campus-info-go/internal/repository"
	"campus-info-go/pkg/log"

	"github.com/google/uuid"
)

// StartResult 是新建会话的结果。
type StartResult struct {
	SessionID      string            `json:"sessionId"`
	WelcomeMessage model.ChatMessage `json:"welcomeMessage"`
}

// PostResult 是一次提问追加的消息对。
type PostResult struct {
	UserMessage model.ChatMessage `json:"userMessage"`
	BotMessage  model.ChatMessage `json:"botMessage"`
}

// History 是会话的完整消息列表与摘要。
type History struct {
	Messages []model.ChatMessage `json:"messages"`
	Session  model.SessionInfo   `json:"sessionInfo"`
}

// ChatService 定义了聊天会话的操作接口。
type ChatService interface {
	StartSession(ctx context.Context, userID int64) (*StartResult, error)
	PostMessage(ctx context.Context, sessionID string, userID int64, text string) (*PostResult, error)
	GetHistory(ctx context.Context, sessionID string, userID int64) (*History, error)
	EndSession(ctx context.Context, sessionID string, userID int64) error
}

type chatService struct {
	sessions repository.ChatSessionRepository
	agent    *agent.Agent
	locks    *sessionLocks
	now      func() time.Time
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(sessions repository.ChatSessionRepository, a *agent.Agent) ChatService {
	return &chatService{sessions: sessions, agent: a, locks: newSessionLocks(), now: time.Now}
}

func (s *chatService) newMessage(role, content string, meta *model.MessageMetadata) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Metadata:  meta,
		Timestamp: s.now().UTC(),
	}
}

// StartSession 新建会话，会话以一条欢迎消息开始。
func (s *chatService) StartSession(ctx context.Context, userID int64) (*StartResult, error) {
	welcome := s.newMessage(model.RoleBotMessage, agent.WelcomeText, nil)
	session := &model.ChatSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		Messages:     []model.ChatMessage{welcome},
		CreatedAt:    welcome.Timestamp,
		LastActivity: welcome.Timestamp,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	log.Infow("chat session started", "session", session.ID, "user", userID)
	return &StartResult{SessionID: session.ID, WelcomeMessage: welcome}, nil
}

// owned 读取会话并校验归属。
func (s *chatService) owned(ctx context.Context, sessionID string, userID int64) (*model.ChatSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load chat session: %w", err)
	}
	if session.UserID != userID {
		log.Warnw("chat session owner mismatch", "session", sessionID, "owner", session.UserID, "caller", userID)
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// PostMessage 把用户消息交给助手处理，并把问答对一次性追加到会话。
// 同一会话的消息按到达顺序逐条处理，前一条追加完成后才开始下一条。
func (s *chatService) PostMessage(ctx context.Context, sessionID string, userID int64, text string) (*PostResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message must not be empty", ErrValidation)
	}
	unlock, err := s.locks.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	userMsg := s.newMessage(model.RoleUserMessage, text, nil)
	reply := s.agent.Process(ctx, text)
	intent := reply.ToolUsed
	if intent == "" {
		intent = agent.IntentGeneral
	}
	botMsg := s.newMessage(model.RoleBotMessage, reply.Response, &model.MessageMetadata{
		Intent:   string(intent),
		ToolUsed: reply.ToolUsed != "",
	})

	if err := s.sessions.Append(ctx, sessionID, botMsg.Timestamp, userMsg, botMsg); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("append chat messages: %w", err)
	}
	return &PostResult{UserMessage: userMsg, BotMessage: botMsg}, nil
}

func (s *chatService) GetHistory(ctx context.Context, sessionID string, userID int64) (*History, error) {
	session, err := s.owned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &History{Messages: session.Messages, Session: session.Info()}, nil
}

func (s *chatService) EndSession(ctx context.Context, sessionID string, userID int64) error {
	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("delete chat session: %w", err)
	}
	log.Infow("chat session ended", "session", sessionID, "user", userID)
	return nil
}
