package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-lens/internal/core/ai/cache"
	aiservice "recipe-lens/internal/core/ai/service"
	"recipe-lens/internal/core/ingredient"
	"recipe-lens/internal/core/prompt"
	"recipe-lens/internal/core/vision"
	"recipe-lens/internal/infrastructure/metrics"
	"recipe-lens/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ImageProcessor 將輸入圖片轉為辨識服務可用的 base64 內容
type ImageProcessor interface {
	ProcessImage(ctx context.Context, imageData string) (string, error)
}

// Generator 以提示詞生成文字
type Generator interface {
	Generate(ctx context.Context, prompt string, bypassCache bool) (*aiservice.Response, error)
}

// Service 食材辨識與食譜生成流程
type Service struct {
	annotator    vision.Annotator
	images       ImageProcessor
	generator    Generator
	cacheManager *cache.CacheManager
	store        *Store
	metrics      *metrics.Metrics
	concurrency  int
}

// ServiceOptions 服務依賴
type ServiceOptions struct {
	Annotator    vision.Annotator
	Images       ImageProcessor
	Generator    Generator
	CacheManager *cache.CacheManager
	Store        *Store
	Metrics      *metrics.Metrics
	Concurrency  int
}

// NewService 創建新的食譜服務
func NewService(opts ServiceOptions) *Service {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		annotator:    opts.Annotator,
		images:       opts.Images,
		generator:    opts.Generator,
		cacheManager: opts.CacheManager,
		store:        opts.Store,
		metrics:      opts.Metrics,
		concurrency:  concurrency,
	}
}

// DetectIngredients 辨識多張圖片中的食材
//
// 任何單張圖片失敗只記錄在 Failures，不會中斷其他圖片，也不回傳錯誤。
// 結果依圖片順序合併去重。
func (s *Service) DetectIngredients(ctx context.Context, images []string) DetectionResult {
	if len(images) == 0 {
		s.metrics.ObserveDetection(string(DetectionEmpty), 0)
		return DetectionResult{Ingredients: []string{}, Status: DetectionEmpty}
	}

	perImage := make([][]string, len(images))
	errs := make([]error, len(images))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			start := time.Now()
			found, err := s.detectOne(ctx, img)
			common.LogVisionCall(time.Since(start), len(found), err)
			perImage[i], errs[i] = found, err
			return nil
		})
	}
	_ = g.Wait()

	failures := make([]string, 0)
	for i, err := range errs {
		if err != nil {
			failures = append(failures, fmt.Sprintf("image %d: %s", i+1, userMessage(err)))
		}
	}

	result := DetectionResult{
		Ingredients: ingredient.Merge(perImage...),
		Failures:    failures,
	}
	switch {
	case len(result.Ingredients) > 0:
		result.Status = DetectionDetected
	case len(failures) == len(images):
		result.Status = DetectionFailed
	default:
		result.Status = DetectionEmpty
	}

	s.metrics.ObserveDetection(string(result.Status), len(result.Ingredients))
	return result
}

// detectOne 處理單張圖片，相同圖片的結果會被快取
func (s *Service) detectOne(ctx context.Context, imageData string) ([]string, error) {
	content, err := s.images.ProcessImage(ctx, imageData)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cacheManager.Get(ctx, cache.NamespaceDetection, content); err == nil {
		var found []string
		parseErr := common.ParseJSON(cached, &found)
		if parseErr == nil {
			return found, nil
		}
		common.LogWarn("快取辨識結果無法解析，已移除", zap.Error(parseErr))
		s.cacheManager.Delete(ctx, cache.NamespaceDetection, content)
	}

	resp, err := s.annotator.Annotate(ctx, content)
	if err != nil {
		return nil, common.ErrVisionServiceError.Wrap(err)
	}

	found := ingredient.Aggregate(resp)
	if data, err := common.ToJSON(found); err == nil {
		_ = s.cacheManager.Set(ctx, cache.NamespaceDetection, content, data)
	}
	return found, nil
}

// KeyIngredients 有辨識結果時使用辨識食材，否則使用常備食材
func KeyIngredients(req GenerateRequest) []string {
	if len(req.DetectedIngredients) > 0 {
		return req.DetectedIngredients
	}
	return req.Staples
}

// IsEmpty 沒有任何可用輸入
func (req GenerateRequest) IsEmpty() bool {
	return len(req.DetectedIngredients) == 0 &&
		len(req.Staples) == 0 &&
		len(req.Cuisines) == 0 &&
		len(req.Dietary) == 0 &&
		strings.TrimSpace(req.Context) == "" &&
		!req.HasImage
}

// Preview 回傳將送出的提示詞
func (s *Service) Preview(req GenerateRequest) string {
	return prompt.Build(prompt.Parameters{
		Ingredients: KeyIngredients(req),
		Cuisines:    req.Cuisines,
		Dietary:     req.Dietary,
		Context:     req.Context,
	})
}

// Generate 生成食譜並正規化模型輸出
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	if req.IsEmpty() {
		return nil, common.ErrEmptyInput
	}

	text := s.Preview(req)

	start := time.Now()
	resp, err := s.generator.Generate(ctx, text, req.Regenerate)
	if err != nil {
		s.metrics.ObserveGeneration("failed", time.Since(start))
		common.LogError("食譜生成失敗", zap.Error(err))
		return nil, common.ErrGenerationServiceError.Wrap(err)
	}

	outcome := Normalize(resp.Content)
	label := "raw"
	if outcome.IsDraft() {
		label = "draft"
	}
	s.metrics.ObserveGeneration(label, time.Since(start))

	common.LogInfo("食譜生成完成",
		zap.String("outcome", label),
		zap.Bool("cache_hit", resp.CacheHit),
		zap.Int("ingredients", len(KeyIngredients(req))),
	)

	return &Generation{
		Outcome:  outcome,
		Prompt:   text,
		Model:    resp.Model,
		CacheHit: resp.CacheHit,
	}, nil
}

// SaveRecipe 儲存食譜草稿
func (s *Service) SaveRecipe(ctx context.Context, draft Draft) (*SavedRecipe, error) {
	saved, err := s.store.Save(ctx, draft)
	s.metrics.ObserveStore("save", err)
	return saved, err
}

// ListRecipes 列出已存食譜
func (s *Service) ListRecipes(ctx context.Context) ([]SavedRecipe, error) {
	recipes, err := s.store.List(ctx)
	s.metrics.ObserveStore("list", err)
	return recipes, err
}

// GetRecipe 取得已存食譜
func (s *Service) GetRecipe(ctx context.Context, id string) (*SavedRecipe, error) {
	r, err := s.store.Get(ctx, id)
	s.metrics.ObserveStore("get", err)
	return r, err
}

// DeleteRecipe 刪除已存食譜
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	s.metrics.ObserveStore("delete", err)
	return err
}

// ClearRecipes 清除所有已存食譜
func (s *Service) ClearRecipes(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.metrics.ObserveStore("clear", err)
	return err
}

// userMessage 取出可對外顯示的錯誤訊息
func userMessage(err error) string {
	if ce, ok := common.AsCustomError(err); ok {
		return ce.Message
	}
	return common.ErrVisionServiceError.Message
}
