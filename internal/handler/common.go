package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/visitor"

	"github.com/gin-gonic/gin"
)

const (
	visitorKey    = "visitor"
	translatorKey = "translator"
)

// Bind 依 Content-Type 綁定 JSON 或表單
func Bind(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": translator(c).T(i18n.InvalidRequest),
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": translator(c).T(i18n.InvalidRequest),
		})
		return err
	}
	return nil
}

type eventURI struct {
	ID int `uri:"id" binding:"required,min=1"`
}

// eventID 解析 :id，失敗時已回應 400
func eventID(c *gin.Context) (int, bool) {
	var uri eventURI
	if err := BindUri(c, &uri); err != nil {
		return 0, false
	}
	return uri.ID, true
}

func visitorFrom(c *gin.Context) *visitor.Visitor {
	return c.MustGet(visitorKey).(*visitor.Visitor)
}

func translator(c *gin.Context) *i18n.Translator {
	if tr, ok := c.Get(translatorKey); ok {
		return tr.(*i18n.Translator)
	}
	return i18n.New(c.GetHeader("Accept-Language"), "")
}

// currentURL 同源 Referer 的 path 與 query，用於 redirect= 參數
func currentURL(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return ""
	}
	return u.RequestURI()
}

// safeRedirect 只接受站內路徑
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

func formInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return fallback
	}
	return v
}
