package vision

// Feature 影像辨識功能
type Feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// Image 圖片內容（base64，不含 data URI 前綴）
type Image struct {
	Content string `json:"content"`
}

// AnnotateImageRequest 單張圖片的辨識請求
type AnnotateImageRequest struct {
	Image    Image     `json:"image"`
	Features []Feature `json:"features"`
}

// BatchAnnotateRequest 批次辨識請求
type BatchAnnotateRequest struct {
	Requests []AnnotateImageRequest `json:"requests"`
}

// ObjectAnnotation 物件定位結果
type ObjectAnnotation struct {
	Mid   string  `json:"mid,omitempty"`
	Name  string  `json:"name"`
	Score float64 `json:"score,omitempty"`
}

// LabelAnnotation 標籤結果
type LabelAnnotation struct {
	Mid         string  `json:"mid,omitempty"`
	Description string  `json:"description"`
	Score       float64 `json:"score,omitempty"`
	Topicality  float64 `json:"topicality,omitempty"`
}

// TextAnnotation 文字辨識結果，第一筆為完整文字
type TextAnnotation struct {
	Locale      string `json:"locale,omitempty"`
	Description string `json:"description"`
}

// Status 單張圖片的錯誤狀態
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AnnotateResponse 單張圖片的辨識結果，各通道可能不存在
type AnnotateResponse struct {
	LocalizedObjectAnnotations []ObjectAnnotation `json:"localizedObjectAnnotations,omitempty"`
	LabelAnnotations           []LabelAnnotation  `json:"labelAnnotations,omitempty"`
	TextAnnotations            []TextAnnotation   `json:"textAnnotations,omitempty"`
	Error                      *Status            `json:"error,omitempty"`
}

// FullText 回傳 OCR 完整文字
func (r *AnnotateResponse) FullText() (string, bool) {
	if r == nil || len(r.TextAnnotations) == 0 {
		return "", false
	}
	return r.TextAnnotations[0].Description, true
}

// BatchAnnotateResponse 批次辨識回應
type BatchAnnotateResponse struct {
	Responses []AnnotateResponse `json:"responses"`
}

// 使用的辨識功能
const (
	FeatureObjectLocalization = "OBJECT_LOCALIZATION"
	FeatureLabelDetection     = "LABEL_DETECTION"
	FeatureTextDetection      = "TEXT_DETECTION"
)
