// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"campus-info-go/internal/model"
	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 上下文中保存认证结果的键
const (
	ContextUser   = "user"
	ContextClaims = "claims"
	ContextToken  = "token"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": msg, "data": nil})
}

// bearerToken 从 Authorization 头读取 token；websocket 握手无法携带头部，允许使用 ?token= 查询参数。
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)), true
	}
	if c.IsWebsocket() {
		if t := c.Query("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它会提取 token，检查类型与黑名单，并将完整的 User 对象存入 Gin 的上下文中。
func AuthMiddleware(userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok || tokenString == "" {
			abort(c, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		user, claims, err := userService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAccountDisabled):
				abort(c, http.StatusForbidden, "account disabled")
			case errors.Is(err, service.ErrInvalidToken):
				abort(c, http.StatusUnauthorized, "invalid or expired token")
			default:
				log.Errorf("authenticate request: %v", err)
				abort(c, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// CurrentUser 返回 AuthMiddleware 存入的用户。
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}
