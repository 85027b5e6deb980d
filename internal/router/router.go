package router

import (
	"fmt"
	"strings"

	"github.com/qr-pickup/internal/cache"
	"github.com/qr-pickup/internal/config"
	adminhandlers "github.com/qr-pickup/internal/http/handlers/admin"
	publichandlers "github.com/qr-pickup/internal/http/handlers/public"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "qp"
	}
	redisClient := cache.Client()
	submitRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:pickup_submit", redisPrefix),
		WindowSeconds: cfg.Security.SubmitRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.SubmitRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的照片）- 必须放在最前面
	uploadDir := strings.TrimSpace(cfg.Upload.Dir)
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/uploads", uploadDir)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/pickup", RateLimitMiddleware(redisClient, submitRule, KeyByIP), publicHandler.CreatePickup)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:code", publicHandler.GetProductByCode)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			admin.GET("/pickups", adminHandler.ListPickups)
			admin.POST("/backfill-addresses", adminHandler.BackfillAddresses)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
