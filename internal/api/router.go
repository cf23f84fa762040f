package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/socialhub/config"
	_ "github.com/d60-Lab/socialhub/docs"
	"github.com/d60-Lab/socialhub/internal/api/handler"
	"github.com/d60-Lab/socialhub/internal/api/middleware"
	"github.com/d60-Lab/socialhub/internal/metrics"
	"github.com/d60-Lab/socialhub/pkg/auth"
)

// HealthCheck 返回 nil 表示依赖可用
type HealthCheck func(ctx context.Context) error

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(cfg *config.Config, h *handler.Handler, tokens auth.Provider, health HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	r.Use(metrics.Middleware())
	r.Use(middleware.Logger())
	r.Use(middleware.ReportErrors())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	// SSE 与 WebSocket 不走压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`.*/(stream|ws)$`})))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := middleware.Auth(tokens)
	v2 := r.Group("/api/v2")
	{
		users := v2.Group("/users")
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.GET("/search", authed, h.SearchUsers)
		users.POST("/edit", authed, h.EditProfile)
		users.POST("/avatar", authed, h.UploadAvatar)

		v2.GET("/user/:id", h.GetProfile)

		friends := v2.Group("/friendship", authed)
		friends.GET("/friends", h.ListFriends)
		friends.POST("/add", h.AddFriend)
		friends.POST("/remove", h.RemoveFriend)

		v2.GET("/posts", h.ListPosts)
		v2.POST("/posts/create", authed, h.CreatePost)
		v2.POST("/comments", authed, h.AddComment)
		v2.POST("/likes/toggle", authed, h.ToggleLike)

		room := v2.Group("/chat/:room", authed)
		room.POST("/messages", h.SendMessage)
		room.GET("/stream", h.StreamRoom)
		room.GET("/ws", h.ChatSocket)
	}
	return r
}
