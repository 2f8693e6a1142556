package service

import (
	"context"
	"fmt"
	"time"

	"recipe-lens/internal/core/ai/cache"
	"recipe-lens/internal/core/ai/gemini"
	"recipe-lens/internal/core/ai/openrouter"
	"recipe-lens/internal/core/ai/provider"
	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"
)

// Response AI 回應
type Response struct {
	Content  string
	Model    string
	CacheHit bool
}

// Service 文字生成服務，包裝提供者與回應快取
type Service struct {
	provider     provider.Provider
	cacheManager *cache.CacheManager
}

// NewProvider 依設定建立生成提供者
func NewProvider(cfg config.GenerationConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(cfg.Gemini), nil
	case config.ProviderOpenRouter:
		return openrouter.NewClient(cfg.OpenRouter), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider: %q", cfg.Provider)
	}
}

// NewService 創建 AI 服務
func NewService(p provider.Provider, cacheManager *cache.CacheManager) *Service {
	return &Service{
		provider:     p,
		cacheManager: cacheManager,
	}
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// Generate 以提示詞生成文字，bypassCache 時略過快取讀取（重新生成）
func (s *Service) Generate(ctx context.Context, prompt string, bypassCache bool) (*Response, error) {
	model := s.provider.GetModel()

	if !bypassCache {
		if val, err := s.cacheManager.Get(ctx, cache.NamespaceGeneration, prompt); err == nil && val != "" {
			return &Response{Content: val, Model: model, CacheHit: true}, nil
		}
	}

	if timeout := s.provider.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, provider.UserPrompt(prompt))
	common.LogAICall(model, time.Since(start), err, requestIDFrom(ctx))
	if err != nil {
		return nil, err
	}

	if resp.Content != "" {
		_ = s.cacheManager.Set(ctx, cache.NamespaceGeneration, prompt, resp.Content)
	}

	return &Response{Content: resp.Content, Model: model}, nil
}

// Close 關閉提供者
func (s *Service) Close() error {
	return s.provider.Close()
}

type requestIDKey struct{}

// WithRequestID 將請求 ID 放入 context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
