// Package handler gateway 的 HTTP 介面：每個頁面回傳畫面狀態 JSON，導向以 303 表示。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/visitor"
	apperrors "event-link-gateway/pkg/app_errors"
	"event-link-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	SecureCookie bool
	CookieMaxAge time.Duration
	// AuthRatePerMinute 每個 IP 每分鐘可送出的登入/註冊次數
	AuthRatePerMinute int
}

type Handler struct {
	registry *visitor.Registry
	limiter  *IPRateLimiter
	opts     Options
}

func NewHandler(registry *visitor.Registry, opts Options) *Handler {
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = 30 * 24 * time.Hour
	}
	if opts.AuthRatePerMinute <= 0 {
		opts.AuthRatePerMinute = 20
	}
	return &Handler{
		registry: registry,
		limiter:  NewIPRateLimiter(opts.AuthRatePerMinute, time.Minute),
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(h.VisitorMiddleware())

	r.GET("/", h.Guard("/"), h.GetCatalog)
	r.POST("/", h.Guard("/"), h.UpdateFilter)

	r.GET("/login", h.Guard("/login"), h.LoginPage)
	r.POST("/login", h.Guard("/login"), h.RateLimit(), h.Login)
	r.GET("/register", h.Guard("/register"), h.RegisterPage)
	r.POST("/register", h.Guard("/register"), h.RateLimit(), h.Register)
	r.POST("/logout", h.Logout)
	r.GET("/session", h.GetSession)

	events := r.Group("/events/:id")
	{
		events.GET("", h.Guard("/events/:id"), h.GetEvent)
		events.POST("/register", h.Guard("/events/:id"), h.RegisterForEvent)
		events.DELETE("/register", h.Guard("/events/:id"), h.UnregisterFromEvent)
		events.POST("/unregister", h.Guard("/events/:id"), h.UnregisterFromEvent)
		events.DELETE("", h.Guard("/events/:id/edit"), h.DeleteEvent)
		events.POST("/delete", h.Guard("/events/:id/edit"), h.DeleteEvent)
		events.POST("/clone", h.Guard("/organizer/events"), h.CloneEvent)
		events.GET("/edit", h.Guard("/events/:id/edit"), h.EventForm)
	}
	r.GET("/create-event", h.Guard("/create-event"), h.EventForm)

	r.GET("/my-events", h.Guard("/my-events"), h.MyEvents)
	r.GET("/organizer/events", h.Guard("/organizer/events"), h.OrganizerEvents)
	r.GET("/organizer/events/:id/participants", h.Guard("/organizer/events/:id/participants"), h.Participants)
	r.GET("/organizer/upgrade", h.Guard("/organizer/upgrade"), h.UpgradePage)
	r.POST("/organizer/upgrade", h.Guard("/organizer/upgrade"), h.Upgrade)

	r.GET("/forbidden", h.Guard("/forbidden"), h.Forbidden)

	r.GET("/toasts", h.StreamToasts)
	r.DELETE("/toasts/:id", h.DismissToast)

	r.NoRoute(h.NotFound)
}

func (h *Handler) Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"page": "forbidden"})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"page": "not-found", "path": c.Request.URL.Path})
}

// EventForm 表單本身由前端處理，gateway 只負責權限檢查
func (h *Handler) EventForm(c *gin.Context) {
	body := gin.H{"page": "event-form"}
	if id := c.Param("id"); id != "" {
		body["event_id"] = id
	}
	c.JSON(http.StatusOK, body)
}

// statusFor 將錯誤對應為 HTTP 狀態碼
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperrors.ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.StatusCode(err) != 0:
		return apperrors.StatusCode(err)
	case errors.Is(err, apperrors.ErrNetworkFailure):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrVisitorClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	tr := translator(c)
	switch {
	case errors.Is(err, context.Canceled):
		log.Debug("Request cancelled")
		c.Status(http.StatusRequestTimeout)
	case errors.Is(err, apperrors.ErrLoginRequired):
		log.Warn("Login required")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": tr.T(i18n.LoginRequired),
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": tr.T(i18n.InvalidRequest),
		})
	case apperrors.IsNotFound(err):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": tr.T(i18n.EventNotFound),
		})
	case apperrors.IsClientError(err):
		log.Warn("Upstream rejected request")
		msg := apperrors.Detail(err)
		if msg == "" {
			msg = tr.T(i18n.ErrorsGeneric)
		}
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error": msg,
		})
	case errors.Is(err, apperrors.ErrNetworkFailure):
		log.Error("Upstream unreachable")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": tr.T(i18n.ErrorsNetwork),
		})
	case errors.Is(err, apperrors.ErrVisitorClosed):
		log.Warn("Visitor closed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": tr.T(i18n.ErrorsGeneric),
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": tr.T(i18n.ErrorsGeneric),
		})
	}
}
