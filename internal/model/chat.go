package model

import "time"

// 聊天消息的角色
const (
	RoleUserMessage = "user"
	RoleBotMessage  = "bot"
)

// MessageMetadata 记录机器人回复对应的意图以及是否调用了数据端点。
type MessageMetadata struct {
	Intent   string `json:"intent,omitempty"`
	ToolUsed bool   `json:"toolUsed"`
}

// ChatMessage 代表会话中的单条消息，一经追加不再修改。
type ChatMessage struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"` // "user" 或 "bot"
	Content   string           `json:"content"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ChatSession 代表一个用户的一次聊天会话。
type ChatSession struct {
	ID           string        `json:"id"`
	UserID       int64         `json:"userId"`
	Messages     []ChatMessage `json:"messages"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
}

// SessionInfo 是返回给前端的会话摘要。
type SessionInfo struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	CreatedAt    LocalTime `json:"createdAt"`
	LastActivity LocalTime `json:"lastActivity"`
	MessageCount int       `json:"messageCount"`
}

// Info 生成会话摘要。
func (s *ChatSession) Info() SessionInfo {
	return SessionInfo{
		ID:           s.ID,
		UserID:       s.UserID,
		CreatedAt:    LocalTime(s.CreatedAt),
		LastActivity: LocalTime(s.LastActivity),
		MessageCount: len(s.Messages),
	}
}
