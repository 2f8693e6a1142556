package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"recipe-lens/internal/pkg/common"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// MaxPixels 解碼前允許的最大像素數（寬 x 高）
const MaxPixels = 40_000_000

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	maxPixels    int64
	client       *resty.Client
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		maxPixels:    MaxPixels,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// ProcessImage 將 URL、data URI 或 base64 圖片轉為 JPEG 的 base64 內容（不含前綴）
func (s *Service) ProcessImage(ctx context.Context, imageData string) (string, error) {
	raw, err := s.load(ctx, strings.TrimSpace(imageData))
	if err != nil {
		return "", err
	}

	// 檢查文件大小
	if int64(len(raw)) > s.maxSizeBytes {
		return "", s.sizeError()
	}

	// 先讀取標頭檢查尺寸，避免解碼超大圖片
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to read image header: %w", err))
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		return "", common.ErrInvalidImageSize.Wrap(fmt.Errorf("image dimensions %dx%d exceed maximum of %d pixels", cfg.Width, cfg.Height, s.maxPixels))
	}

	// 解碼圖片
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	// JPEG 直接沿用原始資料，其餘格式轉為 JPEG
	if format == "jpeg" {
		return base64.StdEncoding.EncodeToString(raw), nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// load 讀取原始圖片位元組
func (s *Service) load(ctx context.Context, imageData string) ([]byte, error) {
	if imageData == "" {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("empty image data"))
	}

	// 檢查是否為 URL
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		return s.download(ctx, imageData)
	}

	// 處理 data URI 格式
	payload := imageData
	if strings.HasPrefix(imageData, "data:image/") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 {
			return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid base64 data format"))
		}
		payload = parts[1]
	}

	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxSizeBytes+2 {
		return nil, s.sizeError()
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return decoded, nil
}

// download 下載圖片，最多讀取 maxSizeBytes+1 位元組
func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}
	if resp.RawResponse.ContentLength > s.maxSizeBytes {
		return nil, s.sizeError()
	}

	raw, err := io.ReadAll(io.LimitReader(body, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(raw)) > s.maxSizeBytes {
		return nil, s.sizeError()
	}
	return raw, nil
}

func (s *Service) sizeError() *common.CustomError {
	return common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
