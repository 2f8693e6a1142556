package recipe

import (
	"strings"

	"recipe-lens/internal/core/prompt"
	"recipe-lens/internal/pkg/common"
)

const (
	// NoOutputText 模型沒有輸出時顯示的文字
	NoOutputText = "No output received."
	// FailedText 生成失敗時顯示的文字
	FailedText = "Failed to generate recipe."

	fence     = "```"
	jsonFence = "```json"
	bom       = "\ufeff"
)

// Normalize 清理模型輸出並嘗試解析為食譜草稿，不會回傳錯誤
func Normalize(raw string) Outcome {
	cleaned := Clean(raw)

	if draft, ok := parseDraft(cleaned); ok {
		return Outcome{Draft: draft}
	}

	if cleaned == "" {
		return Outcome{RawText: NoOutputText}
	}
	return Outcome{RawText: cleaned}
}

// Clean 去除 BOM、code fence 與 "Output JSON:" 標籤
func Clean(raw string) string {
	cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), bom))

	switch {
	case strings.HasPrefix(cleaned, jsonFence):
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(cleaned, jsonFence), fence))
	case strings.HasPrefix(cleaned, fence):
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(cleaned, fence), fence))
	}

	if strings.HasPrefix(cleaned, prompt.OutputCue) {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prompt.OutputCue))
	}

	return cleaned
}

// DraftFromJSON 解析並驗證食譜草稿
func DraftFromJSON(data string) (*Draft, error) {
	draft, ok := parseDraft(strings.TrimSpace(data))
	if !ok {
		return nil, common.NewValidationError("recipe must have a string title and string arrays for ingredients and instructions")
	}
	return draft, nil
}

// parseDraft 嚴格解析，欄位型別不符即視為非食譜
func parseDraft(text string) (*Draft, bool) {
	if text == "" {
		return nil, false
	}

	var obj map[string]interface{}
	if err := common.ParseJSON(text, &obj); err != nil || obj == nil {
		return nil, false
	}

	title, ok := obj["title"].(string)
	if !ok {
		return nil, false
	}
	ingredients, ok := stringArray(obj["ingredients"])
	if !ok {
		return nil, false
	}
	instructions, ok := stringArray(obj["instructions"])
	if !ok {
		return nil, false
	}

	return &Draft{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
	}, true
}

func stringArray(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
