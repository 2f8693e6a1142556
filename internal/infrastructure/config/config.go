package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Vision      VisionConfig     `mapstructure:"vision"`
	Generation  GenerationConfig `mapstructure:"generation"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Storage     StorageConfig    `mapstructure:"storage"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	Detection   DetectionConfig  `mapstructure:"detection"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// VisionConfig 影像辨識服務設定
type VisionConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	MaxObjects int           `mapstructure:"max_objects"`
	MaxLabels  int           `mapstructure:"max_labels"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// GenerationConfig 食譜生成服務設定
type GenerationConfig struct {
	Provider   string           `mapstructure:"provider"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	Model           string        `mapstructure:"model"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StorageConfig 已存食譜的儲存設定
type StorageConfig struct {
	Driver string       `mapstructure:"driver"`
	Redis  RedisConfig  `mapstructure:"redis"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SQLiteConfig SQLite 檔案設定
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Burst    int           `mapstructure:"burst"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// DetectionConfig 食材辨識設定
type DetectionConfig struct {
	MaxImages   int `mapstructure:"max_images"`
	Concurrency int `mapstructure:"concurrency"`
}

// 支援的儲存與生成驅動
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"

	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時僅使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("vision.api_key", "GOOGLE_VISION_API_KEY")
	_ = v.BindEnv("generation.provider", "GENERATION_PROVIDER")
	_ = v.BindEnv("generation.gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("generation.gemini.model", "GEMINI_MODEL")
	_ = v.BindEnv("generation.openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("generation.openrouter.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("generation.openrouter.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("storage.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("storage.sqlite.path", "SQLITE_PATH")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration",
		"provider:", v.GetString("generation.provider"),
		"gemini_api_key:", maskAPIKey(v.GetString("generation.gemini.api_key")),
		"vision_api_key:", maskAPIKey(v.GetString("vision.api_key")),
		"storage:", v.GetString("storage.driver"),
	)

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳僅含預設值的設定，供測試與工具使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// 預設值皆為合法型別，不會失敗
	_ = v.Unmarshal(&config)
	return &config
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-lens")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 20*1024*1024)

	// 影像辨識設定
	v.SetDefault("vision.endpoint", "https://vision.googleapis.com")
	v.SetDefault("vision.max_objects", 20)
	v.SetDefault("vision.max_labels", 20)
	v.SetDefault("vision.timeout", "30s")

	// 生成設定
	v.SetDefault("generation.provider", ProviderGemini)
	v.SetDefault("generation.gemini.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("generation.gemini.model", "gemini-2.5-pro")
	v.SetDefault("generation.gemini.max_output_tokens", 8192)
	v.SetDefault("generation.gemini.timeout", "90s")
	v.SetDefault("generation.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generation.openrouter.model", "qwen/qwen2.5-vl-72b-instruct:free")
	v.SetDefault("generation.openrouter.max_tokens", 1000)
	v.SetDefault("generation.openrouter.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 儲存設定
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "recipe-lens:")
	v.SetDefault("storage.sqlite.path", "data/recipes.db")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.burst", 20)

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	// 辨識設定
	v.SetDefault("detection.max_images", 10)
	v.SetDefault("detection.concurrency", 4)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	switch config.Generation.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unsupported generation provider: %q", config.Generation.Provider)
	}

	switch config.Storage.Driver {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unsupported storage driver: %q", config.Storage.Driver)
	}
	if config.Storage.Driver == StorageSQLite && config.Storage.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is required")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	// 驗證辨識設定
	if config.Detection.MaxImages <= 0 {
		return fmt.Errorf("invalid detection max images")
	}
	if config.Detection.Concurrency <= 0 {
		return fmt.Errorf("invalid detection concurrency")
	}

	return nil
}
