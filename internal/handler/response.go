// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campus-info-go/internal/model"
	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": message, "data": nil})
}

// failErr 把业务错误映射为 HTTP 状态码，未知错误记录日志后返回 500。
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountDisabled), errors.Is(err, service.ErrSessionForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// paramID 解析路径中的数字 id。
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// mustUser 读取 AuthMiddleware 设置的用户，路由配置错误时返回 500。
func mustUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		fail(c, http.StatusInternalServerError, "user not found in context")
		return nil, false
	}
	u, isUser := v.(*model.User)
	if !isUser {
		fail(c, http.StatusInternalServerError, "user not found in context")
		return nil, false
	}
	return u, true
}

func bearer(c *gin.Context) string {
	if t := c.GetString("token"); t != "" {
		return t
	}
	return strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
}
