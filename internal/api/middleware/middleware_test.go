package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(16))

	assert.Equal(t, http.StatusOK, post(r, `{"a":1}`).Code)

	w := post(r, `{"a":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }
	r := newEngine(d.Handler())

	assert.Equal(t, http.StatusOK, post(r, `{"a":1}`).Code)

	w := post(r, `{"a":1}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")

	// 不同內容不受影響
	assert.Equal(t, http.StatusOK, post(r, `{"a":2}`).Code)

	// 超過窗口後允許
	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, post(r, `{"a":1}`).Code)
}

func TestDeduplicationPrunesOldFingerprints(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }

	assert.True(t, d.allow("a"))
	now = now.Add(time.Minute)
	assert.True(t, d.allow("b"))
	assert.Len(t, d.requests, 1)
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2, time.Minute, 2))

	assert.Equal(t, http.StatusOK, post(r, `{"n":1}`).Code)
	assert.Equal(t, http.StatusOK, post(r, `{"n":2}`).Code)

	w := post(r, `{"n":3}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, 1)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
