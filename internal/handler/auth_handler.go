package handler

import (
	"net/http"

	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责处理 token 相关的 API 请求：刷新与登出。
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "invalid request payload: refreshToken is required")
		return
	}

	pair, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		failErr(c, err)
		return
	}

	log.Info("Token refreshed successfully")
	ok(c, http.StatusOK, "Token refreshed successfully", gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// LogoutRequest 可以同时作废 refresh token。
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout 把当前 access token（以及可选的 refresh token）加入黑名单。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	if err := h.userService.Logout(c.Request.Context(), bearer(c), req.RefreshToken); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Logged out successfully", nil)
}
