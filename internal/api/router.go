package api

import (
	"context"
	"net/http"
	"time"

	"recipe-lens/internal/api/handlers/health"
	recipeHandler "recipe-lens/internal/api/handlers/recipe"
	"recipe-lens/internal/api/middleware"
	"recipe-lens/internal/core/ai/cache"
	recipeService "recipe-lens/internal/core/recipe"
	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/infrastructure/metrics"
	"recipe-lens/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)
	defaultMaxBodySize = 10 << 20
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Recipes      *recipeService.Service
	CacheManager *cache.CacheManager
	Metrics      *metrics.Metrics
	Model        string
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logger())
	router.Use(deps.Metrics.Middleware())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			common.WriteError(c, common.ErrGatewayTimeout)
			c.Abort()
		}
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(
		cfg.App.Version,
		deps.Model,
		cfg.Storage.Driver,
		deps.CacheManager,
		func(ctx context.Context) error {
			_, err := deps.Recipes.ListRecipes(ctx)
			return err
		},
	)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst))
	}

	h := recipeHandler.NewHandler(deps.Recipes, cfg.Detection.MaxImages, cfg.App.Debug)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	api.GET("/options", h.Options)

	ingredientGroup := api.Group("/ingredients")
	{
		ingredientGroup.POST("/detect", dedup.Handler(), h.DetectIngredients)
		ingredientGroup.POST("/classify", h.ClassifyTerms)
	}

	api.POST("/prompts/preview", h.PreviewPrompt)

	recipeGroup := api.Group("/recipes")
	{
		recipeGroup.POST("/generate", dedup.Handler(), h.Generate)
		recipeGroup.POST("/normalize", h.Normalize)
		recipeGroup.GET("", h.ListRecipes)
		recipeGroup.POST("", h.SaveRecipe)
		recipeGroup.DELETE("", h.ClearRecipes)
		recipeGroup.GET("/:id", h.GetRecipe)
		recipeGroup.DELETE("/:id", h.DeleteRecipe)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrCodeNotFound,
			Message: common.ErrNotFound.Message,
		})
	})

	common.LogInfo("Router setup completed successfully",
		zap.String("model", deps.Model),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("cache_enabled", deps.CacheManager != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
