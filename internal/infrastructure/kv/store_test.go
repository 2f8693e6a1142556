package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"recipe-lens/internal/infrastructure/config"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore 對任一實作執行相同的行為檢查
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	f := gofakeit.New(99)
	key := "test:" + f.UUID()

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	value := f.Paragraph(2, 3, 8, " ")
	require.NoError(t, store.Set(ctx, key, value))
	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)

	require.NoError(t, store.Set(ctx, key, "[]"))
	got, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	require.NoError(t, store.Remove(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	// 刪除不存在的鍵不是錯誤
	require.NoError(t, store.Remove(ctx, key))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kv.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "SAVED_RECIPES", `[{"id":"1"}]`))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get(ctx, "SAVED_RECIPES")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), config.RedisConfig{Addr: addr, Prefix: "recipe-lens-test:"})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(context.Background(), config.StorageConfig{
		Driver: config.StorageSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kv.db")},
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(context.Background(), config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
