package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveDetection("detected", 3)
	m.ObserveDetection("empty", 0)
	m.ObserveGeneration("draft", 2*time.Second)
	m.ObserveStore("save", nil)
	m.ObserveStore("save", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.detections.WithLabelValues("detected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detections.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("draft")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.savedRecipeOps.WithLabelValues("save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.savedRecipeOps.WithLabelValues("save", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDetection("failed", 0)
		m.ObserveGeneration("failed", time.Second)
		m.ObserveStore("list", nil)
	})
	assert.Nil(t, m.Registry())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/recipes/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/recipes/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "recipe_lens_http_requests_total"))
}
