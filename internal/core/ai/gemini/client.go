package gemini

import (
	"context"
	"errors"
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

// 安全設定門檻
const blockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"

var harmCategories = []string{
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
}

// Part 內容片段
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content 對話內容
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// SafetySetting 安全設定
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// Request generateContent 請求
type Request struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

// Candidate 候選回應
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// UsageMetadata 使用量
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Response generateContent 回應
type Response struct {
	Candidates    []Candidate   `json:"candidates"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

// Text 取第一個候選的非空文字片段，以換行串接
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	texts := make([]string, 0, len(r.Candidates[0].Content.Parts))
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// APIError Gemini 錯誤回應
type APIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client Gemini REST 客戶端
type Client struct {
	client          *resty.Client
	model           string
	maxOutputTokens int
	timeout         time.Duration
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg config.GeminiConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)

	return &Client{
		client:          client,
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		timeout:         cfg.Timeout,
	}
}

func safetySettings() []SafetySetting {
	settings := make([]SafetySetting, 0, len(harmCategories))
	for _, c := range harmCategories {
		settings = append(settings, SafetySetting{Category: c, Threshold: blockMediumAndAbove})
	}
	return settings
}

// primaryConfig 預設生成參數
func (c *Client) primaryConfig() GenerationConfig {
	return GenerationConfig{MaxOutputTokens: c.maxOutputTokens}
}

// fallbackConfig 首次失敗後使用的保守參數
func fallbackConfig() GenerationConfig {
	temperature, topK, topP := 0.7, 32, 1.0
	return GenerationConfig{
		Temperature:     &temperature,
		TopK:            &topK,
		TopP:            &topP,
		MaxOutputTokens: 1024,
	}
}

// Generate 生成回應，失敗時以保守參數重試一次
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	contents := toContents(req)

	resp, err := c.generateContent(ctx, contents, c.primaryConfig())
	if err != nil {
		if ctx.Err() != nil {
			return nil, mapError(err)
		}
		common.LogWarn("Gemini 請求失敗，改用備用參數重試",
			zap.Error(err),
			zap.String("model", c.model),
		)
		resp, err = c.generateContent(ctx, contents, fallbackConfig())
		if err != nil {
			return nil, mapError(err)
		}
	}

	return &provider.Response{
		Content: resp.Text(),
		Usage: provider.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

func (c *Client) generateContent(ctx context.Context, contents []Content, gc GenerationConfig) (*Response, error) {
	body := Request{
		Contents:         contents,
		GenerationConfig: gc,
		SafetySettings:   safetySettings(),
	}

	var result Response
	var apiErr APIError
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			Status:     apiErr.Error.Status,
			Message:    apiErr.Error.Message,
			Body:       resp.String(),
		}
	}

	return &result, nil
}

// StatusError 非 200 的 API 回應
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini api error (status %d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error (status %d): %s", e.StatusCode, e.Body)
}

// mapError 依 API 錯誤內容判斷錯誤類型，連線錯誤一律視為生成失敗
func mapError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return common.ErrGenerationServiceError.Wrap(err)
	}

	msg := se.Message + " " + se.Body
	switch {
	case strings.Contains(msg, "API_KEY"):
		return common.ErrInvalidAPIKey.Wrap(err)
	case strings.Contains(msg, "quota"):
		return common.ErrQuotaExceeded.Wrap(err)
	case strings.Contains(msg, "model"):
		return common.ErrModelUnavailable.Wrap(err)
	default:
		return common.ErrGenerationServiceError.Wrap(err)
	}
}

func toContents(req *provider.Request) []Content {
	if req == nil {
		return nil
	}
	contents := make([]Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: m.Content}},
		})
	}
	return contents
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
