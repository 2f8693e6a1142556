package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) *CacheManager {
	t.Helper()
	m := NewManager(config.CacheConfig{
		Enabled:         true,
		MaxSize:         maxSize,
		TTL:             ttl,
		CleanupInterval: time.Hour,
	})
	require.NotNil(t, m)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10, time.Minute)

	_, err := m.Get(ctx, NamespaceGeneration, "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, NamespaceGeneration, "prompt", "answer"))
	got, err := m.Get(ctx, NamespaceGeneration, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	// 命名空間互相隔離
	_, err = m.Get(ctx, NamespaceDetection, "prompt")
	assert.Error(t, err)

	m.Delete(ctx, NamespaceGeneration, "prompt")
	_, err = m.Get(ctx, NamespaceGeneration, "prompt")
	assert.Error(t, err)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(3), stats["misses"])
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10, 10*time.Millisecond)

	require.NoError(t, m.Set(ctx, NamespaceGeneration, "k", "v"))
	time.Sleep(25 * time.Millisecond)

	_, err := m.Get(ctx, NamespaceGeneration, "k")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
}

func TestLRUEviction(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 2, time.Minute)

	require.NoError(t, m.Set(ctx, NamespaceGeneration, "a", "1"))
	require.NoError(t, m.Set(ctx, NamespaceGeneration, "b", "2"))

	// a 被存取過，b 應先被淘汰
	_, err := m.Get(ctx, NamespaceGeneration, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, NamespaceGeneration, "c", "3"))

	_, err = m.Get(ctx, NamespaceGeneration, "b")
	assert.Error(t, err)
	got, err := m.Get(ctx, NamespaceGeneration, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestDisabledManagerIsNilSafe(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: false})
	assert.Nil(t, m)

	ctx := context.Background()
	assert.NoError(t, m.Set(ctx, NamespaceGeneration, "k", "v"))
	_, err := m.Get(ctx, NamespaceGeneration, "k")
	assert.True(t, errors.Is(err, common.ErrCacheDisabled))
	assert.Equal(t, false, m.GetStats()["enabled"])
	assert.NoError(t, m.Close())
}
