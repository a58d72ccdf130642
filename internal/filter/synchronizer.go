package filter

import (
	"net/url"
	"strings"
)

// Navigator 接收新的 canonical query 並執行導航
type Navigator func(query url.Values)

// Synchronizer 持有目前的篩選狀態與尚未送出的標籤輸入。
// 除了直接翻頁之外，任何篩選變更都會把頁碼重設為 1。
type Synchronizer struct {
	state    State
	tagInput string
	navigate Navigator
}

func NewSynchronizer(navigate Navigator) *Synchronizer {
	if navigate == nil {
		navigate = func(url.Values) {}
	}
	return &Synchronizer{state: Default(), navigate: navigate}
}

// State 回傳狀態副本
func (s *Synchronizer) State() State {
	out := s.state
	out.Tags = append([]string(nil), s.state.Tags...)
	if len(out.Tags) == 0 {
		out.Tags = nil
	}
	return out
}

func (s *Synchronizer) TagInput() string {
	return s.tagInput
}

// Sync 由路由的 query 參數更新狀態，不觸發導航
func (s *Synchronizer) Sync(query url.Values) State {
	s.state = Parse(query)
	return s.State()
}

func (s *Synchronizer) SetSearch(search string) {
	s.state.Search = search
	s.filtersChanged()
}

func (s *Synchronizer) SetCategory(category string) {
	s.state.Category = category
	s.filtersChanged()
}

// SetDateRange 空字串代表清除該端點
func (s *Synchronizer) SetDateRange(start, end string) {
	s.state.StartDate = parseDate(start)
	s.state.EndDate = parseDate(end)
	s.filtersChanged()
}

func (s *Synchronizer) SetLocation(location string) {
	s.state.Location = location
	s.filtersChanged()
}

func (s *Synchronizer) SetTagInput(input string) {
	s.tagInput = input
}

// AddTag 加入標籤輸入框的內容，回傳是否真的加入。
// 無論是否加入都會清空輸入框、重設頁碼並導航。
func (s *Synchronizer) AddTag() bool {
	next := strings.TrimSpace(s.tagInput)
	added := false
	if next != "" && !strings.Contains(next, ",") && !s.state.HasTag(next) {
		s.state.Tags = append(append([]string(nil), s.state.Tags...), next)
		added = true
	}
	s.tagInput = ""
	s.filtersChanged()
	return added
}

func (s *Synchronizer) RemoveTag(tag string) {
	tags := make([]string, 0, len(s.state.Tags))
	for _, t := range s.state.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}
	s.state.Tags = tags
	s.filtersChanged()
}

func (s *Synchronizer) ChangePageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	s.state.PageSize = size
	s.filtersChanged()
}

// ChangePage 直接翻頁，不重設其他篩選條件
func (s *Synchronizer) ChangePage(delta, total int) bool {
	next, ok := ChangePage(s.state, delta, total)
	if !ok {
		return false
	}
	s.state = next
	s.navigate(Serialize(s.state))
	return true
}

// Reset 清除所有篩選條件，保留每頁筆數
func (s *Synchronizer) Reset() {
	pageSize := s.state.PageSize
	s.state = Default()
	s.state.PageSize = orDefault(pageSize, DefaultPageSize)
	s.tagInput = ""
	s.navigate(Serialize(s.state))
}

func (s *Synchronizer) filtersChanged() {
	s.state.Page = DefaultPage
	s.navigate(Serialize(s.state))
}
