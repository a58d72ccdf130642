// Package filter 負責活動目錄的篩選與分頁狀態，以及它和 URL query 之間的雙向轉換。
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	dateLayout = "2006-01-02"
)

// URL query keys
const (
	KeySearch    = "search"
	KeyCategory  = "category"
	KeyStartDate = "start_date"
	KeyEndDate   = "end_date"
	KeyLocation  = "location"
	KeyTags      = "tags"
	KeyPage      = "page"
	KeyPageSize  = "page_size"

	// 上游 API 的標籤參數
	apiKeyTags = "tags_csv"
)

// State 目錄篩選狀態，空字串代表未設定
type State struct {
	Search    string   `json:"search"`
	Category  string   `json:"category"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Location  string   `json:"location"`
	Tags      []string `json:"tags"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
}

// Default 回傳全部為預設值的狀態
func Default() State {
	return State{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Equal 比較兩個狀態，標籤比較保留順序
func (s State) Equal(o State) bool {
	if s.Search != o.Search || s.Category != o.Category ||
		s.StartDate != o.StartDate || s.EndDate != o.EndDate ||
		s.Location != o.Location || s.Page != o.Page || s.PageSize != o.PageSize {
		return false
	}
	if len(s.Tags) != len(o.Tags) {
		return false
	}
	for i := range s.Tags {
		if s.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// HasTag 標籤是否已存在 (完全比對)
func (s State) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Parse 將 URL query 轉成 State，無效的數字或日期一律回到預設值
func Parse(query url.Values) State {
	state := State{
		Search:    query.Get(KeySearch),
		Category:  query.Get(KeyCategory),
		StartDate: parseDate(query.Get(KeyStartDate)),
		EndDate:   parseDate(query.Get(KeyEndDate)),
		Location:  query.Get(KeyLocation),
		Tags:      splitTags(query.Get(KeyTags)),
		Page:      parsePositive(query.Get(KeyPage), DefaultPage),
		PageSize:  parsePositive(query.Get(KeyPageSize), DefaultPageSize),
	}
	return state
}

// Serialize 將 State 轉成 canonical query，省略所有預設值
func Serialize(state State) url.Values {
	query := url.Values{}
	setIfNotEmpty(query, KeySearch, state.Search)
	setIfNotEmpty(query, KeyCategory, state.Category)
	setIfNotEmpty(query, KeyStartDate, state.StartDate)
	setIfNotEmpty(query, KeyEndDate, state.EndDate)
	setIfNotEmpty(query, KeyLocation, state.Location)
	if len(state.Tags) > 0 {
		query.Set(KeyTags, strings.Join(state.Tags, ","))
	}
	if state.Page != DefaultPage && state.Page > 0 {
		query.Set(KeyPage, strconv.Itoa(state.Page))
	}
	if state.PageSize != DefaultPageSize && state.PageSize > 0 {
		query.Set(KeyPageSize, strconv.Itoa(state.PageSize))
	}
	return query
}

// CanonicalQuery 回傳已編碼的 canonical query 字串 (不含 "?")
func CanonicalQuery(state State) string {
	return Serialize(state).Encode()
}

// CanonicalURL 在 path 後接上 canonical query
func CanonicalURL(path string, state State) string {
	q := CanonicalQuery(state)
	if q == "" {
		return path
	}
	return path + "?" + q
}

// ListQuery 組出上游 GET /api/events 的 query
func ListQuery(state State) url.Values {
	query := url.Values{}
	setIfNotEmpty(query, KeySearch, state.Search)
	setIfNotEmpty(query, KeyCategory, state.Category)
	setIfNotEmpty(query, KeyStartDate, state.StartDate)
	setIfNotEmpty(query, KeyEndDate, state.EndDate)
	setIfNotEmpty(query, KeyLocation, state.Location)
	if len(state.Tags) > 0 {
		query.Set(apiKeyTags, strings.Join(state.Tags, ","))
	}
	query.Set(KeyPage, strconv.Itoa(orDefault(state.Page, DefaultPage)))
	query.Set(KeyPageSize, strconv.Itoa(orDefault(state.PageSize, DefaultPageSize)))
	return query
}

// TotalPages pageSize <= 0 時固定為 1
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ChangePage 計算翻頁結果，回傳 false 代表拒絕 (不導航)。
// total 為 0 時視為未知，不檢查上限。
func ChangePage(state State, delta, total int) (State, bool) {
	next := state.Page + delta
	if next < 1 {
		return state, false
	}
	if total > 0 && (next-1)*state.PageSize >= total {
		return state, false
	}
	state.Page = next
	return state, true
}

func parseDate(value string) string {
	if value == "" {
		return ""
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return ""
	}
	return value
}

func parsePositive(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func splitTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tags = append(tags, p)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func setIfNotEmpty(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

func orDefault(v, fallback int) int {
	if v < 1 {
		return fallback
	}
	return v
}
