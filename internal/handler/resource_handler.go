package handler

import (
	"net/http"

	"campus-info-go/internal/model"
	"campus-info-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ResourceHandler 负责一张话题表的 REST 接口。
type ResourceHandler struct {
	svc service.ResourceService
}

// NewResourceHandler 创建一个新的 ResourceHandler 实例。
func NewResourceHandler(svc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

// includeInactive 只有管理员与教职工可以查看已删除的记录。
func includeInactive(c *gin.Context) bool {
	if c.Query("include_inactive") != "true" {
		return false
	}
	v, _ := c.Get("user")
	user, isUser := v.(*model.User)
	return isUser && user.IsPrivileged()
}

// List 以查询参数作为过滤条件列出记录。
func (h *ResourceHandler) List(c *gin.Context) {
	filters := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if k == "include_inactive" || len(v) == 0 {
			continue
		}
		filters[k] = v[0]
	}
	rows, err := h.svc.List(c.Request.Context(), filters, includeInactive(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", rows)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id, includeInactive(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", rec)
}

func (h *ResourceHandler) Create(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), body, user.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "created", rec)
}

func (h *ResourceHandler) Update(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), id, body, user.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "updated", rec)
}

// Delete 软删除一条记录。
func (h *ResourceHandler) Delete(c *gin.Context) {
	user, exists := mustUser(c)
	if !exists {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user.ID); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "deleted", nil)
}
