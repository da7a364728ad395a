package handler

import (
	"net/http"
	"strconv"

	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 分页列出用户，page 从 1 开始。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := h.adminService.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", res)
}

// SetRoleRequest 定义了修改角色的请求体。
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request payload: role is required")
		return
	}
	user, err := h.adminService.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		failErr(c, err)
		return
	}
	log.Infof("Admin: user %d role set to %s", id, req.Role)
	ok(c, http.StatusOK, "role updated", service.ProfileOf(user))
}

// SetActiveRequest 定义了启用/停用账号的请求体。
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request payload: active is required")
		return
	}
	current, exists := mustUser(c)
	if !exists {
		return
	}
	if current.ID == id && !*req.Active {
		fail(c, http.StatusBadRequest, "administrators cannot deactivate themselves")
		return
	}
	user, err := h.adminService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		failErr(c, err)
		return
	}
	log.Infof("Admin: user %d active=%t", id, *req.Active)
	ok(c, http.StatusOK, "status updated", service.ProfileOf(user))
}

// Stats 返回后台概览数据。
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", stats)
}
