package handler

import (
	"net/http"

	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理注册、登录与个人信息相关的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	RegNo      string `json:"regNo" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Department string `json:"department"`
}

// Register 处理用户注册请求。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// 绑定并验证 JSON 请求体
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "invalid request payload: regNo, name and a password of at least 6 characters are required")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		RegNo:      req.RegNo,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		log.Warnf("Register: User registration failed for '%s', error: %v", req.RegNo, err)
		failErr(c, err)
		return
	}

	log.Infof("User '%s' registered successfully", user.RegNo)
	ok(c, http.StatusCreated, "User registered successfully", service.ProfileOf(user))
}

// LoginRequest 定义了用户登录 API 的请求体结构。
type LoginRequest struct {
	RegNo    string `json:"regNo" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "invalid request payload: regNo and password are required")
		return
	}

	pair, user, err := h.userService.Login(c.Request.Context(), req.RegNo, req.Password)
	if err != nil {
		log.Warnf("Login: Failed login attempt for '%s', error: %v", req.RegNo, err)
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "Login successful", gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         service.ProfileOf(user),
	})
}

// GetProfile 返回当前登录用户的信息。
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	ok(c, http.StatusOK, "success", service.ProfileOf(user))
}
