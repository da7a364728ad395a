package handler

import (
	"net/http"

	"campus-info-go/internal/middleware"
	"campus-info-go/internal/service"

	"github.com/gin-gonic/gin"
)

// Services 汇总路由需要的业务服务。Attachments 为 nil 时不注册附件路由。
type Services struct {
	Users       service.UserService
	Admin       service.AdminService
	Chat        service.ChatService
	Search      service.SearchService
	Attachments service.AttachmentService
	Resources   map[string]service.ResourceService
}

// RouterOptions 是路由层的可选中间件配置。
type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

// NewRouter 创建 gin 引擎并注册 /api/v1 下的全部路由。
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(opts.AllowedOrigins))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware())
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	authMW := middleware.AuthMiddleware(svc.Users)
	staff := middleware.StaffAuthMiddleware()

	apiV1 := r.Group("/api/v1")
	{
		userHandler := NewUserHandler(svc.Users)
		authHandler := NewAuthHandler(svc.Users)
		auth := apiV1.Group("/auth")
		{
			// 无需认证的路由 (公开访问)
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)

			// 需要认证的路由
			auth.POST("/logout", authMW, authHandler.Logout)
			auth.GET("/me", authMW, userHandler.GetProfile)
		}

		// 话题数据：读需要登录，写需要管理员或教职工
		for topic, rs := range svc.Resources {
			h := NewResourceHandler(rs)
			group := apiV1.Group("/"+topic, authMW)
			if topic == "faqs" {
				group.GET("/search", NewSearchHandler(svc.Search).SearchFAQs)
			}
			group.GET("", h.List)
			group.GET("/:id", h.Get)
			group.POST("", staff, h.Create)
			group.PUT("/:id", staff, h.Update)
			group.DELETE("/:id", staff, h.Delete)
		}

		chatHandler := NewChatHandler(svc.Chat, opts.AllowedOrigins)
		chat := apiV1.Group("/chat", authMW)
		{
			chat.POST("/sessions", chatHandler.Start)
			chat.POST("/sessions/:id/messages", chatHandler.Post)
			chat.GET("/sessions/:id/history", chatHandler.History)
			chat.DELETE("/sessions/:id", chatHandler.End)
			chat.GET("/ws/:id", chatHandler.Socket)
		}

		if svc.Attachments != nil {
			attachmentHandler := NewAttachmentHandler(svc.Attachments)
			attachments := apiV1.Group("/attachments", authMW)
			{
				attachments.POST("", staff, attachmentHandler.Upload)
				attachments.GET("/*object", attachmentHandler.Download)
			}
		}

		adminHandler := NewAdminHandler(svc.Admin)
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin := apiV1.Group("/admin", authMW, middleware.AdminAuthMiddleware())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.SetRole)
			admin.PUT("/users/:id/active", adminHandler.SetActive)
			admin.GET("/stats", adminHandler.Stats)
		}
	}
	return r
}
