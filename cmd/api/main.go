package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-lens/internal/api"
	"recipe-lens/internal/core/ai/cache"
	aiservice "recipe-lens/internal/core/ai/service"
	"recipe-lens/internal/core/image"
	"recipe-lens/internal/core/recipe"
	"recipe-lens/internal/core/vision"
	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/infrastructure/kv"
	"recipe-lens/internal/infrastructure/metrics"
	"recipe-lens/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
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

	common.LogInfo("載入設定",
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("vision_configured", cfg.Vision.APIKey != ""),
	)

	m := metrics.New()

	// 已存食譜儲存
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := kv.New(ctx, cfg.Storage)
	cancel()
	if err != nil {
		common.LogFatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// 初始化快取
	cacheManager := cache.NewManager(cfg.Cache)
	defer cacheManager.Close()

	// 生成服務
	p, err := aiservice.NewProvider(cfg.Generation)
	if err != nil {
		common.LogFatal("Failed to initialize generation provider", zap.Error(err))
	}
	aiService := aiservice.NewService(p, cacheManager)
	defer aiService.Close()

	recipes := recipe.NewService(recipe.ServiceOptions{
		Annotator:    vision.NewClient(cfg.Vision),
		Images:       image.NewService(cfg.Image.MaxSizeBytes),
		Generator:    aiService,
		CacheManager: cacheManager,
		Store:        recipe.NewStore(store),
		Metrics:      m,
		Concurrency:  cfg.Detection.Concurrency,
	})

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Recipes:      recipes,
		CacheManager: cacheManager,
		Metrics:      m,
		Model:        aiService.Model(),
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
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
