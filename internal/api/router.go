package api

import (
	"context"
	"net/http"
	"time"

	groceryHandler "grocery-manager/internal/api/handlers/grocery"
	"grocery-manager/internal/api/handlers/health"
	"grocery-manager/internal/api/middleware"
	"grocery-manager/internal/core/ai/cache"
	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/infrastructure/config"
	"grocery-manager/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 超時設置：一次收據上傳會觸發兩輪推論
const timeoutDuration = 120 * time.Second

// Services 路由需要的全部協作者
type Services struct {
	Orchestrator *pipeline.Orchestrator
	Inventory    *pipeline.InventoryService
	Recipes      *pipeline.RecipeService
	Cache        *cache.Manager
	Redis        *redis.Client
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制：base64 編碼約放大 4/3 倍
	router.Use(middleware.BodySizeLimit(cfg.Image.MaxSizeBytes * 4 / 3))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求去重：短時間重複上傳同一張收據直接擋下
	router.Use(middleware.Deduplication(cfg))

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
		}
	})

	// 未知路徑與不支援的方法
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"code":  common.ErrCodeNotFound,
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Method not allowed",
			"code":  common.ErrCodeMethodNotAllowed,
		})
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck(cfg, svc.Cache))
	router.GET("/ready", health.ReadinessCheck(svc.Redis))
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		receiptHandler := groceryHandler.NewReceiptHandler(svc.Orchestrator)
		inventoryHandler := groceryHandler.NewInventoryHandler(svc.Inventory)
		recipeHandler := groceryHandler.NewRecipeHandler(svc.Recipes, cfg.Pipeline.DefaultExpiringDays)

		// 收據上傳：判讀 + 效期估算
		api.POST("/receipts", receiptHandler.HandleUpload)

		// 庫存查詢與移除
		api.GET("/grocery", inventoryHandler.HandleList)
		api.DELETE("/grocery", inventoryHandler.HandleRemove)

		// 食譜推薦
		api.GET("/recipes", recipeHandler.HandleRecommend)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("cache_manager_initialized", svc.Cache != nil),
		zap.Duration("timeout", timeoutDuration),
	)

	return router
}
