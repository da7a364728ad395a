package middleware

import (
	"net/http"

	"campus-info-go/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRoles 检查当前用户的角色是否在允许列表中。
// 此中间件必须在 AuthMiddleware 之后使用。
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		currentUser, ok := CurrentUser(c)
		if !ok {
			// AuthMiddleware 未能成功解析，这是一个服务器内部错误
			abort(c, http.StatusInternalServerError, "user not found in context")
			return
		}
		if !allowed[currentUser.Role] {
			abort(c, http.StatusForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}

// AdminAuthMiddleware 只允许管理员访问。
func AdminAuthMiddleware() gin.HandlerFunc {
	return RequireRoles(model.RoleAdmin)
}

// StaffAuthMiddleware 允许管理员与教职工访问，用于话题数据的写操作。
func StaffAuthMiddleware() gin.HandlerFunc {
	return RequireRoles(model.RoleAdmin, model.RoleFaculty)
}
