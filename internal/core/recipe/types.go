package recipe

// Draft 結構化食譜草稿
type Draft struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Outcome 模型輸出的正規化結果，Draft 與 RawText 只會有一個
type Outcome struct {
	Draft   *Draft `json:"recipe,omitempty"`
	RawText string `json:"raw_text,omitempty"`
}

// IsDraft 是否為結構化食譜
func (o Outcome) IsDraft() bool {
	return o.Draft != nil
}

// SavedRecipe 已存食譜
type SavedRecipe struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// DetectionStatus 食材辨識狀態
type DetectionStatus string

const (
	DetectionDetected DetectionStatus = "detected"
	DetectionEmpty    DetectionStatus = "empty"
	DetectionFailed   DetectionStatus = "failed"
)

// DetectionResult 多張圖片的辨識結果
type DetectionResult struct {
	Ingredients []string        `json:"ingredients"`
	Status      DetectionStatus `json:"status"`
	Failures    []string        `json:"failures,omitempty"`
}

// GenerateRequest 生成食譜的輸入
type GenerateRequest struct {
	DetectedIngredients []string `json:"detected_ingredients"`
	Staples             []string `json:"staples"`
	Cuisines            []string `json:"cuisines"`
	Dietary             []string `json:"dietary"`
	Context             string   `json:"context"`
	HasImage            bool     `json:"has_image"`
	Regenerate          bool     `json:"regenerate"`
}

// Generation 生成結果
type Generation struct {
	Outcome
	Prompt   string `json:"prompt,omitempty"`
	Model    string `json:"model,omitempty"`
	CacheHit bool   `json:"cache_hit"`
}

// Options 可供選擇的目錄
type Options struct {
	Staples  []string `json:"staples"`
	Cuisines []string `json:"cuisines"`
	Dietary  []string `json:"dietary"`
}
