package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"campus-info-go/internal/agent"
	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 单条 websocket 消息的最大长度
const maxSocketMessage = 4096

// ChatHandler 负责聊天会话的 REST 与 WebSocket 接口。
type ChatHandler struct {
	chatService service.ChatService
	upgrader    websocket.Upgrader
}

// NewChatHandler 创建一个新的 ChatHandler，allowedOrigins 同 CORS 配置，"*" 表示任意来源。
func NewChatHandler(chatService service.ChatService, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				// 同源请求总是允许
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// agentContext 把调用方的 token 交给数据端点，HTTP 端点据此转发认证。
func agentContext(c *gin.Context) context.Context {
	return agent.WithBearerToken(c.Request.Context(), bearer(c))
}

// Start 新建会话。
func (h *ChatHandler) Start(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	res, err := h.chatService.StartSession(c.Request.Context(), user.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "session started", res)
}

// MessageRequest 是一条用户消息。
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// Post 处理一条消息并返回问答对。
func (h *ChatHandler) Post(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request payload: message is required")
		return
	}
	res, err := h.chatService.PostMessage(agentContext(c), c.Param("id"), user.ID, req.Message)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", res)
}

func (h *ChatHandler) History(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	res, err := h.chatService.GetHistory(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", res)
}

func (h *ChatHandler) End(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	if err := h.chatService.EndSession(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "session ended", nil)
}

// socketReply 是写回 websocket 的帧。
type socketReply struct {
	Type    string              `json:"type"`
	Data    *service.PostResult `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Socket 在已有会话上建立 WebSocket：每个文本帧作为一条消息提交，问答对以 JSON 写回。
func (h *ChatHandler) Socket(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	sessionID := c.Param("id")
	// 升级前校验会话归属，失败时仍能返回普通的 HTTP 错误
	if _, err := h.chatService.GetHistory(c.Request.Context(), sessionID, user.ID); err != nil {
		failErr(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxSocketMessage)
	log.Infof("WebSocket 连接已建立，用户: %s, 会话: %s", user.RegNo, sessionID)

	ctx := agentContext(c)
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		res, err := h.chatService.PostMessage(ctx, sessionID, user.ID, string(message))
		reply := socketReply{Type: "reply", Data: res}
		if err != nil {
			reply = socketReply{Type: "error", Message: err.Error()}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if werr := conn.WriteJSON(reply); werr != nil {
			log.Warnf("写入 WebSocket 失败: %v", werr)
			return
		}
		// 会话被删除或过期后关闭连接
		if errors.Is(err, service.ErrSessionNotFound) {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		}
	}
}
