package kv

import (
	"context"
	"fmt"

	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 字串鍵值儲存介面，語意與行動端的 AsyncStorage 相同
type Store interface {
	// Get 取得值，鍵不存在時 found 為 false
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set 以整筆覆寫方式寫入
	Set(ctx context.Context, key, value string) error

	// Remove 刪除鍵，不存在時不視為錯誤
	Remove(ctx context.Context, key string) error

	// Close 釋放連線
	Close() error
}

// New 依設定選擇儲存驅動
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageMemory, "":
		common.LogInfo("使用記憶體儲存")
		return NewMemoryStore(), nil
	case config.StorageRedis:
		store, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		common.LogInfo("使用 Redis 儲存", zap.String("addr", cfg.Redis.Addr))
		return store, nil
	case config.StorageSQLite:
		store, err := NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		common.LogInfo("使用 SQLite 儲存", zap.String("path", cfg.SQLite.Path))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}
