package handler

import (
	"net/http"

	"event-link-gateway/internal/guard"
	"event-link-gateway/internal/i18n"

	"github.com/gin-gonic/gin"
)

// CookieName 訪客 id 的 cookie
const CookieName = "sid"

// VisitorMiddleware 依 sid cookie 取得或建立訪客，並依 Accept-Language 設定語系
func (h *Handler) VisitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(CookieName)
		v, _, err := h.registry.GetOrCreate(c.Request.Context(), sid)
		if err != nil {
			h.handleError(c, err, "Visitor")
			c.Abort()
			return
		}
		if sid != v.ID {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, v.ID, int(h.opts.CookieMaxAge.Seconds()), "/", "", h.opts.SecureCookie, true)
		}

		tr := i18n.New(c.GetHeader("Accept-Language"), h.registry.Locale())
		if err := v.SetTranslator(c.Request.Context(), tr); err != nil {
			h.handleError(c, err, "Visitor")
			c.Abort()
			return
		}
		c.Set(visitorKey, v)
		c.Set(translatorKey, tr)
		c.Header("Content-Language", tr.Tag().String())
		c.Next()
	}
}

// Guard 在頁面 handler 之前執行 pattern 對應的路由 guard
func (h *Handler) Guard(pattern string) gin.HandlerFunc {
	route, _ := guard.Lookup(pattern)
	return func(c *gin.Context) {
		nav := guard.Navigation{
			Target:  c.Request.URL.RequestURI(),
			Current: currentURL(c),
		}
		res := route.Check(visitorFrom(c).Session(), nav)
		if !res.Allowed() {
			seeOther(c, res.Location())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit 依用戶端 IP 限制送出次數
func (h *Handler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": translator(c).T(i18n.TooManyRequests),
			})
			return
		}
		c.Next()
	}
}
