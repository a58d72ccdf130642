package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"event-link-gateway/internal/i18n"

	"github.com/gin-gonic/gin"
)

// keepAlive SSE 心跳間隔，避免 proxy 斷線
const keepAlive = 25 * time.Second

// StreamToasts 以 SSE 推送 toast 佇列快照，斷線即取消訂閱
func (h *Handler) StreamToasts(c *gin.Context) {
	ctx := c.Request.Context()
	snapshots := visitorFrom(c).Toasts().Stream(ctx)
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("toasts", snap)
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}

func (h *Handler) DismissToast(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": translator(c).T(i18n.InvalidRequest),
		})
		return
	}
	visitorFrom(c).Toasts().Dismiss(id)
	c.Status(http.StatusNoContent)
}
