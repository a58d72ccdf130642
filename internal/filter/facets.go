package filter

import "event-link-gateway/internal/model"

// Facets 從「目前這一頁」的結果計算分類與標籤清單 (依首次出現順序去重)。
// 不是整個目錄的分類，僅反映最近一次查詢的結果。
func Facets(items []model.EventSummary) (categories []string, tags []string) {
	categories = []string{}
	tags = []string{}
	seenCategory := make(map[string]struct{})
	seenTag := make(map[string]struct{})
	for _, item := range items {
		if item.Category != nil && *item.Category != "" {
			if _, ok := seenCategory[*item.Category]; !ok {
				seenCategory[*item.Category] = struct{}{}
				categories = append(categories, *item.Category)
			}
		}
		for _, tag := range item.Tags {
			if _, ok := seenTag[tag.Name]; !ok {
				seenTag[tag.Name] = struct{}{}
				tags = append(tags, tag.Name)
			}
		}
	}
	return categories, tags
}
