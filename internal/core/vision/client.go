package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"recipe-lens/internal/infrastructure/config"
	"recipe-lens/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Annotator 影像辨識介面
type Annotator interface {
	Annotate(ctx context.Context, imageBase64 string) (*AnnotateResponse, error)
}

// Client Google Cloud Vision REST 客戶端
type Client struct {
	client     *resty.Client
	apiKey     string
	maxObjects int
	maxLabels  int
}

// NewClient 創建影像辨識客戶端
func NewClient(cfg config.VisionConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:     client,
		apiKey:     cfg.APIKey,
		maxObjects: cfg.MaxObjects,
		maxLabels:  cfg.MaxLabels,
	}
}

// Annotate 對單張圖片執行物件、標籤與文字辨識
func (c *Client) Annotate(ctx context.Context, imageBase64 string) (*AnnotateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("vision api key is not configured")
	}

	req := BatchAnnotateRequest{
		Requests: []AnnotateImageRequest{
			{
				Image: Image{Content: imageBase64},
				Features: []Feature{
					{Type: FeatureObjectLocalization, MaxResults: c.maxObjects},
					{Type: FeatureLabelDetection, MaxResults: c.maxLabels},
					{Type: FeatureTextDetection, MaxResults: 1},
				},
			},
		},
	}

	start := time.Now()
	var result BatchAnnotateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&result).
		Post("/v1/images:annotate")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to vision api: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("Vision API returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("耗時", time.Since(start)),
		)
		return nil, fmt.Errorf("vision api error (status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(result.Responses) == 0 {
		return nil, errors.New("empty responses in vision api result")
	}

	annotated := result.Responses[0]
	if annotated.Error != nil && annotated.Error.Message != "" {
		return nil, fmt.Errorf("vision api image error (code %d): %s", annotated.Error.Code, annotated.Error.Message)
	}

	common.LogDebug("Vision API 回應",
		zap.Int("objects", len(annotated.LocalizedObjectAnnotations)),
		zap.Int("labels", len(annotated.LabelAnnotations)),
		zap.Int("texts", len(annotated.TextAnnotations)),
		zap.Duration("耗時", time.Since(start)),
	)

	return &annotated, nil
}
