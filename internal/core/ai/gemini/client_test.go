package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"recipe-lens/internal/core/ai/provider"
	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.GeminiConfig{
		APIKey:          "gm-test",
		Endpoint:        url,
		Model:           "gemini-2.5-pro",
		MaxOutputTokens: 8192,
		Timeout:         5 * time.Second,
	})
}

func decodeRequest(t *testing.T, r *http.Request) Request {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var req Request
	require.NoError(t, common.ParseJSONBytes(body, &req))
	return req
}

func TestGeneratePrimaryConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "gm-test", r.Header.Get("x-goog-api-key"))

		req := decodeRequest(t, r)
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "make soup", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 8192, req.GenerationConfig.MaxOutputTokens)
		assert.Nil(t, req.GenerationConfig.Temperature)
		require.Len(t, req.SafetySettings, 4)
		for _, s := range req.SafetySettings {
			assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"title\":"},{"text":""},{"text":"\"Soup\"}"}]}}],
			"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Generate(context.Background(), provider.UserPrompt("make soup"))
	require.NoError(t, err)
	assert.Equal(t, "{\"title\":\n\"Soup\"}", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestGenerateRetriesWithFallbackConfig(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		req := decodeRequest(t, r)
		w.Header().Set("Content-Type", "application/json")

		if n == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad config","status":"INVALID_ARGUMENT"}}`))
			return
		}

		require.NotNil(t, req.GenerationConfig.Temperature)
		assert.Equal(t, 0.7, *req.GenerationConfig.Temperature)
		assert.Equal(t, 32, *req.GenerationConfig.TopK)
		assert.Equal(t, 1.0, *req.GenerationConfig.TopP)
		assert.Equal(t, 1024, req.GenerationConfig.MaxOutputTokens)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Generate(context.Background(), provider.UserPrompt("x"))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *common.CustomError
	}{
		{
			name: "invalid key",
			body: `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`,
			want: common.ErrInvalidAPIKey,
		},
		{
			name: "quota",
			body: `{"error":{"code":429,"message":"You exceeded your current quota.","status":"RESOURCE_EXHAUSTED"}}`,
			want: common.ErrQuotaExceeded,
		},
		{
			name: "model",
			body: `{"error":{"code":404,"message":"models/gemini-x is not found","status":"NOT_FOUND"}}`,
			want: common.ErrModelUnavailable,
		},
		{
			name: "other",
			body: `{"error":{"code":500,"message":"Internal error","status":"INTERNAL"}}`,
			want: common.ErrGenerationServiceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Generate(context.Background(), provider.UserPrompt("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
			assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		})
	}
}

func TestGenerateTransportErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Generate(context.Background(), provider.UserPrompt("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGenerationServiceError))
}

func TestResponseText(t *testing.T) {
	var nilResp *Response
	assert.Equal(t, "", nilResp.Text())
	assert.Equal(t, "", (&Response{}).Text())
	assert.Equal(t, "", (&Response{Candidates: []Candidate{{}}}).Text())
	assert.Equal(t, "a\nb", (&Response{Candidates: []Candidate{
		{Content: &Content{Parts: []Part{{Text: "a"}, {Text: "b"}}}},
		{Content: &Content{Parts: []Part{{Text: "c"}}}},
	}}).Text())
}
