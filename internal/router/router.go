package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"PedagoPass/internal/handler"
	"PedagoPass/internal/middleware"
	"PedagoPass/internal/model"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Post        *handler.PostHandler
	Like        *handler.PostLikeHandler
	Comment     *handler.CommentHandler
	Community   *handler.CommunityHandler
	Destination *handler.DestinationHandler
}

type Options struct {
	Log                *slog.Logger
	Validator          middleware.TokenValidator
	CORSOrigins        []string
	// TrustedProxies 为空时忽略 X-Forwarded-For，限流按连接地址计
	TrustedProxies     []string
	RateLimitPerMinute int
	RateLimitBurst     int
	// UploadDir 非空时以 /uploads 提供本地媒体文件
	UploadDir string
}

func InitRouter(h Handlers, opt Options) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opt.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opt.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opt.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if opt.UploadDir != "" {
		r.Static("/uploads", opt.UploadDir)
	}

	requireAuth := middleware.RequireAuth(opt.Validator)
	optionalAuth := middleware.OptionalAuth(opt.Validator)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证相关接口，按 IP 限流
	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("")
		limited.Use(middleware.RateLimit(opt.RateLimitPerMinute, opt.RateLimitBurst))
		limited.POST("/register", h.Auth.Register)
		limited.POST("/login", h.Auth.Login)

		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/validate", h.Auth.Validate)
		authGroup.GET("/me", requireAuth, h.Auth.Me)
		authGroup.PUT("/profile", requireAuth, h.Auth.UpdateProfile)
		authGroup.PUT("/change-password", requireAuth, h.Auth.ChangePassword)
	}

	// 用户与积分
	api.GET("/users/:id", h.User.Get)
	api.GET("/users/:id/points", h.User.Points)
	api.GET("/points/me", requireAuth, h.User.MyPoints)

	// 帖子相关接口
	postGroup := api.Group("/posts")
	{
		postGroup.GET("", optionalAuth, h.Post.ListPosts)
		postGroup.POST("", requireAuth,
			middleware.UploadLimit(middleware.MaxUploadFiles, middleware.MaxUploadFileSize),
			h.Post.CreatePost)
		postGroup.GET("/:id", optionalAuth, h.Post.GetPost)
		postGroup.PUT("/:id", requireAuth, h.Post.UpdatePost)
		postGroup.DELETE("/:id", requireAuth, h.Post.DeletePost)

		postGroup.GET("/:id/like", optionalAuth, h.Like.Status)
		postGroup.POST("/:id/like", requireAuth, h.Like.Toggle)

		postGroup.GET("/:id/comments", h.Comment.List)
		postGroup.POST("/:id/comments", requireAuth, h.Comment.Add)
	}
	api.DELETE("/comments/:id", requireAuth, h.Comment.Delete)

	// 社区相关接口
	communityGroup := api.Group("/communities")
	{
		communityGroup.GET("", h.Community.List)
		communityGroup.POST("", requireAuth, h.Community.Create)
		communityGroup.GET("/:id", h.Community.Get)
		communityGroup.PUT("/:id", requireAuth, h.Community.Update)
		communityGroup.DELETE("/:id", requireAuth, h.Community.Delete)
		communityGroup.POST("/:id/join", requireAuth, h.Community.Join)
		communityGroup.POST("/:id/leave", requireAuth, h.Community.Leave)
		communityGroup.GET("/:id/members", h.Community.Members)
		communityGroup.PUT("/:id/members/:userId", requireAuth, h.Community.SetRole)
	}

	// 目的地与建议
	api.GET("/destinations", h.Destination.List)
	api.GET("/destinations/:id", h.Destination.Get)
	api.POST("/destinations", requireAuth, adminOnly, h.Destination.Create)
	api.POST("/suggestions", requireAuth, h.Destination.Suggest)
	api.GET("/suggestions", requireAuth, adminOnly, h.Destination.Suggestions)

	return r, nil
}
