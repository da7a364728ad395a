package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS 按允许列表回写跨域头，"*" 表示任意来源。预检请求直接返回 204。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed, explicit := false, false
		for _, o := range allowedOrigins {
			if o == origin {
				allowed, explicit = true, true
				break
			}
			if o == "*" {
				allowed = true
			}
		}

		if origin != "" && allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Add("Vary", "Origin")
			// 通配来源不允许携带凭证
			if explicit {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
