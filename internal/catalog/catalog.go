// Package catalog 將篩選狀態組成上游請求，並從回應整理出畫面需要的資料。
//
// Catalog 不是並行安全的，由訪客的 reaction 迴圈驅動：
// Begin 與 Apply 在迴圈內執行，Dispatch 在迴圈外執行。
package catalog

import (
	"context"
	"net/url"

	"event-link-gateway/internal/filter"
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/model"
	"event-link-gateway/pkg/logger"

	"go.uber.org/zap"
)

type Lister interface {
	ListEvents(ctx context.Context, query url.Values) (model.PaginatedEvents, error)
}

type Recommender interface {
	Recommendations(ctx context.Context) ([]model.EventSummary, error)
}

// Notifier 錯誤訊息的 toast 通道
type Notifier interface {
	Error(text string) int
}

// Request 一次列表請求，Seq 依 Begin 的呼叫順序遞增
type Request struct {
	Seq   uint64
	State filter.State
	Query url.Values
}

type Response struct {
	Request Request
	Page    model.PaginatedEvents
	Err     error
}

// View 目錄畫面狀態
type View struct {
	Filter        filter.State         `json:"filter"`
	Items         []model.EventSummary `json:"items"`
	Total         int                  `json:"total"`
	TotalPages    int                  `json:"total_pages"`
	Categories    []string             `json:"categories"`
	AvailableTags []string             `json:"available_tags"`
	Recommended   []model.EventSummary `json:"recommended"`
	Loading       bool                 `json:"loading"`
	Error         string               `json:"error,omitempty"`
}

type Catalog struct {
	lister      Lister
	recommender Recommender
	notifier    Notifier
	tr          *i18n.Translator
	log         *zap.Logger

	view View
	seq  uint64
}

func New(lister Lister, recommender Recommender, notifier Notifier, tr *i18n.Translator) *Catalog {
	return &Catalog{
		lister:      lister,
		recommender: recommender,
		notifier:    notifier,
		tr:          tr,
		log:         logger.WithComponent("catalog"),
		view: View{
			Filter:     filter.Default(),
			TotalPages: 1,
		},
	}
}

func (c *Catalog) SetTranslator(tr *i18n.Translator) {
	c.tr = tr
}

func (c *Catalog) SetLogger(l *zap.Logger) {
	c.log = l
}

// View 回傳畫面狀態副本
func (c *Catalog) View() View {
	out := c.view
	out.Items = append([]model.EventSummary(nil), c.view.Items...)
	out.Recommended = append([]model.EventSummary(nil), c.view.Recommended...)
	out.Categories = append([]string(nil), c.view.Categories...)
	out.AvailableTags = append([]string(nil), c.view.AvailableTags...)
	out.Filter.Tags = append([]string(nil), c.view.Filter.Tags...)
	return out
}

// Begin 記錄新的篩選狀態並標記為載入中
func (c *Catalog) Begin(state filter.State) Request {
	c.seq++
	c.view.Filter = state
	c.view.Loading = true
	return Request{
		Seq:   c.seq,
		State: state,
		Query: filter.ListQuery(state),
	}
}

// Dispatch 送出請求，不修改任何狀態
func (c *Catalog) Dispatch(ctx context.Context, req Request) Response {
	page, err := c.lister.ListEvents(ctx, req.Query)
	return Response{Request: req, Page: page, Err: err}
}

// Apply 依回應抵達順序套用，較舊請求的回應晚到時仍會覆蓋較新的結果
func (c *Catalog) Apply(resp Response) {
	c.view.Loading = false

	if resp.Err != nil {
		c.log.Warn("list events failed",
			zap.Uint64("seq", resp.Request.Seq),
			zap.Error(resp.Err),
		)
		c.view.Error = c.tr.T(i18n.ErrorsGeneric)
		if c.notifier != nil {
			c.notifier.Error(c.view.Error)
		}
		return
	}

	if resp.Request.Seq != c.seq {
		c.log.Debug("applying stale list response",
			zap.Uint64("seq", resp.Request.Seq),
			zap.Uint64("latest", c.seq),
		)
	}

	page := resp.Page
	c.view.Error = ""
	c.view.Items = page.Items
	c.view.Total = page.Total
	if page.Page > 0 {
		c.view.Filter.Page = page.Page
	}
	if page.PageSize > 0 {
		c.view.Filter.PageSize = page.PageSize
	}
	c.view.TotalPages = filter.TotalPages(c.view.Total, c.view.Filter.PageSize)
	c.view.Categories, c.view.AvailableTags = filter.Facets(page.Items)
}

// Fetch 依序執行 Begin、Dispatch、Apply
func (c *Catalog) Fetch(ctx context.Context, state filter.State) View {
	c.Apply(c.Dispatch(ctx, c.Begin(state)))
	return c.View()
}

// RecommendationsResult 推薦列表請求的結果
type RecommendationsResult struct {
	Items []model.EventSummary
	Err   error
}

// WantsRecommendations 只有學生會載入推薦
func WantsRecommendations(s model.Session) bool {
	return s.IsLoggedIn() && s.IsStudent()
}

// LoadRecommendations 在 reaction 迴圈外呼叫
func (c *Catalog) LoadRecommendations(ctx context.Context, s model.Session) RecommendationsResult {
	if !WantsRecommendations(s) || c.recommender == nil {
		return RecommendationsResult{}
	}
	items, err := c.recommender.Recommendations(ctx)
	return RecommendationsResult{Items: items, Err: err}
}

// ApplyRecommendations 失敗時清空，不影響目錄本身
func (c *Catalog) ApplyRecommendations(res RecommendationsResult) {
	if res.Err != nil {
		c.log.Info("recommendations unavailable", zap.Error(res.Err))
		c.view.Recommended = nil
		return
	}
	c.view.Recommended = res.Items
}

// ClearRecommendations 身分不再是學生時呼叫
func (c *Catalog) ClearRecommendations() {
	c.view.Recommended = nil
}
