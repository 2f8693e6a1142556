package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe_lens"

// Metrics 服務指標，nil 接收者的方法皆為 no-op
type Metrics struct {
	registry *prometheus.Registry

	detections          *prometheus.CounterVec
	detectedIngredients prometheus.Histogram
	generations         *prometheus.CounterVec
	generationDuration  prometheus.Histogram
	savedRecipeOps      *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New 建立獨立 registry 的指標集合
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		detections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Ingredient detection requests by status",
		}, []string{"status"}),
		detectedIngredients: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detected_ingredients",
			Help:      "Number of ingredients detected per request",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Recipe generations by outcome (draft, raw, failed)",
		}, []string{"outcome"}),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of recipe generation calls",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		savedRecipeOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_recipes_operations_total",
			Help:      "Saved recipe store operations",
		}, []string{"op", "result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Registry 回傳底層 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 回傳 /metrics handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDetection 記錄辨識結果
func (m *Metrics) ObserveDetection(status string, count int) {
	if m == nil {
		return
	}
	m.detections.WithLabelValues(status).Inc()
	m.detectedIngredients.Observe(float64(count))
}

// ObserveGeneration 記錄生成結果與耗時
func (m *Metrics) ObserveGeneration(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
}

// ObserveStore 記錄已存食譜操作
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.savedRecipeOps.WithLabelValues(op, result).Inc()
}

// Middleware 記錄 HTTP 請求指標
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
