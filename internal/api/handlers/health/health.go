package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-lens/internal/core/ai/cache"
	"recipe-lens/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     string                 `json:"model"`
	Storage   string                 `json:"storage"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// ReadyFunc 就緒檢查，回傳錯誤表示依賴不可用
type ReadyFunc func(ctx context.Context) error

// Handler 健康檢查處理程序
type Handler struct {
	version      string
	model        string
	storage      string
	cacheManager *cache.CacheManager
	ready        ReadyFunc
}

// NewHandler 創建健康檢查處理程序
func NewHandler(version, model, storage string, cacheManager *cache.CacheManager, ready ReadyFunc) *Handler {
	return &Handler{
		version:      version,
		model:        model,
		storage:      storage,
		cacheManager: cacheManager,
		ready:        ready,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Model:     h.model,
		Storage:   h.storage,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Cache: h.cacheManager.GetStats(),
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，確認已存食譜的儲存可讀取
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			common.WriteError(c, common.ErrServiceUnavailable.Wrap(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
