package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"event-link-gateway/internal/filter"
	"event-link-gateway/internal/guard"
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/service"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

// Filter actions accepted by POST /
const (
	ActionSearch   = "search"
	ActionCategory = "category"
	ActionDates    = "dates"
	ActionLocation = "location"
	ActionAddTag   = "add_tag"
	ActionRemove   = "remove_tag"
	ActionPageSize = "page_size"
	ActionPage     = "page"
	ActionReset    = "reset"
)

func (h *Handler) GetCatalog(c *gin.Context) {
	v := visitorFrom(c)
	view, err := v.LoadCatalog(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.handleError(c, err, "GetCatalog")
		return
	}
	_, tagInput, _ := v.CatalogView(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"page":          "catalog",
		"catalog":       view,
		"tag_input":     tagInput,
		"canonical_url": filter.CanonicalURL("/", view.Filter),
	})
}

// UpdateFilter 套用篩選動作後導向新的 canonical URL。
// 目前的 query 取自表單欄位 query，沒有時取自 Referer。
func (h *Handler) UpdateFilter(c *gin.Context) {
	current, err := url.ParseQuery(c.PostForm("query"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, "UpdateFilter")
		return
	}
	if c.PostForm("query") == "" {
		if ref, err := url.Parse(currentURL(c)); err == nil && ref.Path == guard.HomePath {
			current = ref.Query()
		}
	}

	action, ok := filterAction(c)
	if !ok {
		h.handleError(c, apperrors.ErrInvalidInput, "UpdateFilter")
		return
	}

	target, err := visitorFrom(c).UpdateFilter(c.Request.Context(), current, action)
	if err != nil {
		h.handleError(c, err, "UpdateFilter")
		return
	}
	seeOther(c, target)
}

func filterAction(c *gin.Context) (func(*filter.Synchronizer, int), bool) {
	value := c.PostForm("value")
	switch c.PostForm("action") {
	case ActionSearch:
		return func(s *filter.Synchronizer, _ int) { s.SetSearch(value) }, true
	case ActionCategory:
		return func(s *filter.Synchronizer, _ int) { s.SetCategory(value) }, true
	case ActionDates:
		start, end := c.PostForm("start_date"), c.PostForm("end_date")
		return func(s *filter.Synchronizer, _ int) { s.SetDateRange(start, end) }, true
	case ActionLocation:
		return func(s *filter.Synchronizer, _ int) { s.SetLocation(value) }, true
	case ActionAddTag:
		return func(s *filter.Synchronizer, _ int) {
			s.SetTagInput(value)
			s.AddTag()
		}, true
	case ActionRemove:
		return func(s *filter.Synchronizer, _ int) { s.RemoveTag(value) }, true
	case ActionPageSize:
		size := formInt(c, "value", filter.DefaultPageSize)
		return func(s *filter.Synchronizer, _ int) { s.ChangePageSize(size) }, true
	case ActionPage:
		delta, err := strconv.Atoi(value)
		if err != nil {
			return nil, false
		}
		return func(s *filter.Synchronizer, total int) { s.ChangePage(delta, total) }, true
	case ActionReset:
		return func(s *filter.Synchronizer, _ int) { s.Reset() }, true
	}
	return nil, false
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	view, err := visitorFrom(c).LoadDetail(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}
	status := http.StatusOK
	if view.Event == nil {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"page": "event-details", "detail": view})
}

// RegisterForEvent 未登入時導向登入頁，登入後回到活動詳情
func (h *Handler) RegisterForEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	v := visitorFrom(c)
	view, err := v.Register(c.Request.Context(), id)
	if errors.Is(err, apperrors.ErrLoginRequired) {
		q := url.Values{guard.RedirectParam: {"/events/" + strconv.Itoa(id)}}
		seeOther(c, guard.RedirectTo(guard.LoginPath, q).Location())
		return
	}
	h.respondDetail(c, view, err, "RegisterForEvent")
}

func (h *Handler) UnregisterFromEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	view, err := visitorFrom(c).Unregister(c.Request.Context(), id)
	h.respondDetail(c, view, err, "UnregisterFromEvent")
}

// DeleteEvent 成功後導向主辦方的活動列表
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	view, err := visitorFrom(c).Delete(c.Request.Context(), id)
	if err == nil {
		seeOther(c, "/organizer/events")
		return
	}
	h.respondDetail(c, view, err, "DeleteEvent")
}

func (h *Handler) CloneEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if _, err := visitorFrom(c).Clone(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrVisitorClosed) {
			h.handleError(c, err, "CloneEvent")
			return
		}
		c.JSON(statusFor(err), gin.H{
			"error": service.FailureText(translator(c), service.OpClone, err),
		})
		return
	}
	seeOther(c, "/organizer/events")
}

// respondDetail 上游錯誤以畫面上的錯誤訊息呈現，迴圈錯誤走 handleError
func (h *Handler) respondDetail(c *gin.Context, view service.DetailView, err error, operation string) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"page": "event-details", "detail": view})
	case errors.Is(err, apperrors.ErrVisitorClosed), errors.Is(err, apperrors.ErrLoginRequired):
		h.handleError(c, err, operation)
	default:
		c.JSON(statusFor(err), gin.H{"page": "event-details", "detail": view})
	}
}

func (h *Handler) MyEvents(c *gin.Context) {
	res := visitorFrom(c).MyEvents(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"page": "my-events", "events": res.Events, "error": res.Error})
}

func (h *Handler) OrganizerEvents(c *gin.Context) {
	res := visitorFrom(c).OwnEvents(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"page": "organizer-events", "events": res.Events, "error": res.Error})
}

// Participants ?format=csv 時下載 CSV
func (h *Handler) Participants(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	list, errText := visitorFrom(c).Participants(c.Request.Context(), id)
	if errText != "" {
		c.JSON(http.StatusOK, gin.H{"page": "participants", "error": errText})
		return
	}

	if c.Query("format") == "csv" {
		tr := translator(c)
		data, err := service.ParticipantsCSV(list, []string{
			tr.T(i18n.ColumnName), tr.T(i18n.ColumnEmail), tr.T(i18n.ColumnRegisteredAt),
		})
		if err != nil {
			h.handleError(c, err, "Participants")
			return
		}
		c.Header("Content-Disposition", "attachment; filename=participants-"+strconv.Itoa(list.EventID)+".csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "participants", "participants": list})
}
