package recipe

import (
	"strings"
)

// imageKinds 統計每張圖片的輸入類型（用於日誌記錄，避免寫入圖片內容）
func imageKinds(images []string) []string {
	kinds := make([]string, 0, len(images))
	for _, img := range images {
		kinds = append(kinds, getImageType(img))
	}
	return kinds
}

// getImageType 獲取圖片類型
func getImageType(image string) string {
	image = strings.TrimSpace(image)
	switch {
	case image == "":
		return "empty"
	case strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://"):
		return "url"
	case strings.HasPrefix(image, "data:image/"):
		parts := strings.SplitN(image, ";base64,", 2)
		if len(parts) == 2 {
			return "data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	case strings.HasPrefix(image, "/9j/"):
		return "base64_jpeg"
	case strings.HasPrefix(image, "iVBORw0KGgo"):
		return "base64_png"
	default:
		return "base64"
	}
}
