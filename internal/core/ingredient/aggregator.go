package ingredient

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"recipe-lens/internal/core/vision"
)

// Aggregate 將單張圖片的物件、標籤與 OCR 結果合併為食材清單
//
// 順序依首次發現（物件、標籤、OCR），以字串完全相同去重。
// OCR 以詞彙表逐一比對全文，而非將文字切詞後查表。
func Aggregate(resp *vision.AnnotateResponse) []string {
	out := make([]string, 0)
	if resp == nil {
		return out
	}

	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, obj := range resp.LocalizedObjectAnnotations {
		if IsFoodTerm(obj.Name) {
			add(Capitalize(strings.TrimSpace(obj.Name)))
		}
	}

	for _, label := range resp.LabelAnnotations {
		if IsFoodTerm(label.Description) {
			add(Capitalize(strings.TrimSpace(label.Description)))
		}
	}

	if text, ok := resp.FullText(); ok {
		for i, term := range foodTerms {
			if termPatterns[i].MatchString(text) {
				add(Capitalize(term))
			}
		}
	}

	return out
}

// Capitalize 首字大寫，其餘保持原樣
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Merge 依序合併多份食材清單並去重
func Merge(lists ...[]string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
