package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recipe-lens/internal/core/ai/cache"
	"recipe-lens/internal/core/ai/gemini"
	"recipe-lens/internal/core/ai/openrouter"
	"recipe-lens/internal/core/ai/provider"
	"recipe-lens/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
}

func (f *fakeProvider) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string { return "fake" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error { return nil }

func newCache(t *testing.T) *cache.CacheManager {
	m := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestGenerateUsesCache(t *testing.T) {
	p := &fakeProvider{content: `{"title":"x"}`}
	svc := NewService(p, newCache(t))
	ctx := context.Background()

	first, err := svc.Generate(ctx, "prompt", false)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, "fake", first.Model)

	second, err := svc.Generate(ctx, "prompt", false)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, p.calls)

	// 重新生成時略過快取
	third, err := svc.Generate(ctx, "prompt", true)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, 2, p.calls)
}

func TestGenerateDoesNotCacheEmptyOrErrors(t *testing.T) {
	p := &fakeProvider{content: ""}
	svc := NewService(p, newCache(t))
	ctx := context.Background()

	_, err := svc.Generate(ctx, "prompt", false)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "prompt", false)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)

	p.err = errors.New("down")
	_, err = svc.Generate(ctx, "other", false)
	assert.Error(t, err)
}

func TestGenerateWithoutCache(t *testing.T) {
	p := &fakeProvider{content: "x"}
	svc := NewService(p, nil)

	_, err := svc.Generate(context.Background(), "prompt", false)
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), "prompt", false)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default().Generation

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, p)
	assert.Equal(t, "gemini-2.5-pro", p.GetModel())

	cfg.Provider = config.ProviderOpenRouter
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openrouter.Client{}, p)

	cfg.Provider = "palm"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", requestIDFrom(ctx))
	assert.Equal(t, "", requestIDFrom(context.Background()))
}
