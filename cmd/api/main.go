package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery-manager/internal/api"
	"grocery-manager/internal/core/ai/cache"
	"grocery-manager/internal/core/ai/deepseek"
	"grocery-manager/internal/core/image"
	"grocery-manager/internal/core/pipeline"
	"grocery-manager/internal/infrastructure/config"
	"grocery-manager/internal/infrastructure/storage"
	"grocery-manager/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	// 使用 logger 記錄啟動信息
	common.LogInfo("載入設定",
		zap.String("deepseek_endpoint", cfg.DeepSeek.Endpoint),
		zap.String("deepseek_model", cfg.DeepSeek.Model),
		zap.String("receipt_bucket", cfg.Storage.ReceiptBucket),
	)

	// 初始化快取（停用時為 nil，所有方法對 nil 安全）
	cacheManager := cache.NewManager(cfg)
	defer cacheManager.Close()

	// 初始化儲存
	redisClient, err := storage.NewRedisClient(cfg)
	if err != nil {
		common.LogFatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	blobStore, err := storage.NewS3BlobStore(context.Background(), cfg)
	if err != nil {
		common.LogFatal("Failed to initialize blob store", zap.Error(err))
	}

	groceryStore := storage.NewGroceryRedisStore(redisClient)
	recipeStore := storage.NewRecipeRedisStore(redisClient)

	// 初始化推論客戶端與管線服務
	generator := deepseek.NewClient(cfg, cacheManager)
	imageService := image.NewService(cfg.Image.MaxSizeBytes)

	receiptService := pipeline.NewReceiptService(generator, groceryStore, blobStore, imageService)
	expirationService := pipeline.NewExpirationService(generator, groceryStore,
		cfg.Pipeline.DefaultShelfLifeDays, cfg.Pipeline.MatchThreshold)
	inventoryService := pipeline.NewInventoryService(groceryStore)
	recipeService := pipeline.NewRecipeService(generator, groceryStore, recipeStore, cfg.Pipeline.RecipeCount)
	orchestrator := pipeline.NewOrchestrator(receiptService, expirationService)

	// 設置路由
	router := api.SetupRouter(cfg, api.Services{
		Orchestrator: orchestrator,
		Inventory:    inventoryService,
		Recipes:      recipeService,
		Cache:        cacheManager,
		Redis:        redisClient,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
