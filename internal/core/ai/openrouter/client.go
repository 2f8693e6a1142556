package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-lens/internal/core/ai/provider"
	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Request 表示 API 請求
type Request struct {
	Messages    []provider.Message `json:"messages"`
	Model       string             `json:"model,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message provider.Message `json:"message"`
}

// Client OpenRouter API 客戶端
type Client struct {
	client    *resty.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("X-Title", "Recipe Lens")

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

// sanitizeResponse 清理響應內容，移除可能的圖片數據後再寫入日誌
func sanitizeResponse(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") {
		return "[IMAGE_DATA_REMOVED]"
	}
	if len(body) > 100 && strings.Contains(s, "base64") {
		return "[BASE64_DATA_REMOVED]"
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return s
	}

	// 清理字串欄位中的圖片資料
	for k, v := range raw {
		if str, ok := v.(string); ok && (strings.Contains(str, "data:image/") || strings.Contains(str, "base64")) {
			raw[k] = "[IMAGE_DATA_REMOVED]"
		}
	}

	sanitized, err := json.Marshal(raw)
	if err != nil {
		return "[JSON_PARSING_ERROR]"
	}
	return string(sanitized)
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := Request{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		TopP:        0.9,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	var result Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, common.ErrGenerationServiceError.Wrap(fmt.Errorf("failed to send request to OpenRouter: %w", err))
	}

	sanitized := sanitizeResponse(resp.Body())
	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", sanitized),
		)
		switch resp.StatusCode() {
		case http.StatusUnauthorized:
			return nil, common.ErrInvalidAPIKey.Wrap(fmt.Errorf("openrouter: %s", sanitized))
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return nil, common.ErrQuotaExceeded.Wrap(fmt.Errorf("openrouter: %s", sanitized))
		default:
			return nil, common.ErrGenerationServiceError.Wrap(fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), sanitized))
		}
	}

	if len(result.Choices) == 0 {
		return nil, common.ErrGenerationServiceError.Wrap(fmt.Errorf("empty choices in response (response: %s)", sanitized))
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
