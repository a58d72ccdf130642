package handler

import (
	"errors"
	"net/http"

	"event-link-gateway/internal/guard"
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/model"
	"event-link-gateway/internal/session"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type upgradeRequest struct {
	InviteCode string `json:"invite_code" form:"invite_code" binding:"required"`
}

// sessionBody 提供給前端的 session 摘要，不含 token
func sessionBody(s model.Session) gin.H {
	return gin.H{
		"logged_in": s.IsLoggedIn(),
		"role":      s.EffectiveRole(),
		"user_id":   session.UserIDInt(s),
		"user":      s.User,
	}
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionBody(visitorFrom(c).Session()))
}

func (h *Handler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":     "login",
		"redirect": safeRedirect(c.Query(guard.RedirectParam)),
	})
}

func (h *Handler) RegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register"})
}

// Login 成功後導向 redirect 參數指定的站內路徑
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := Bind(c, &req); err != nil {
		return
	}
	v := visitorFrom(c)
	tr := translator(c)

	if _, err := v.Store().Login(c.Request.Context(), req); err != nil {
		h.authFailed(c, err, i18n.LoginFailed, "Login")
		return
	}
	v.Toasts().Success(tr.T(i18n.LoginSuccess))
	seeOther(c, safeRedirect(c.Query(guard.RedirectParam)))
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := Bind(c, &req); err != nil {
		return
	}
	if req.Password != req.ConfirmPassword {
		h.handleError(c, apperrors.ErrInvalidInput, "Register")
		return
	}
	v := visitorFrom(c)
	tr := translator(c)

	if _, err := v.Store().Register(c.Request.Context(), req); err != nil {
		h.authFailed(c, err, i18n.RegisterAccountError, "Register")
		return
	}
	v.Toasts().Success(tr.T(i18n.RegisterAccountOK))
	seeOther(c, guard.HomePath)
}

func (h *Handler) Logout(c *gin.Context) {
	v := visitorFrom(c)
	if err := v.Store().Logout(c.Request.Context()); err != nil {
		h.handleError(c, err, "Logout")
		return
	}
	v.Toasts().Info(translator(c).T(i18n.LoggedOut))
	seeOther(c, guard.HomePath)
}

func (h *Handler) UpgradePage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "organizer-upgrade"})
}

// Upgrade 邀請碼正確時升級為主辦方並導向主辦方活動列表
func (h *Handler) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := Bind(c, &req); err != nil {
		return
	}
	v := visitorFrom(c)
	tr := translator(c)

	if _, err := v.Store().UpgradeToOrganizer(c.Request.Context(), req.InviteCode); err != nil {
		h.authFailed(c, err, i18n.UpgradeFailed, "Upgrade")
		return
	}
	v.Toasts().Success(tr.T(i18n.UpgradeSuccess))
	seeOther(c, "/organizer/events")
}

// authFailed 上游拒絕 (401/403/4xx) 顯示對應訊息，其他錯誤走 handleError
func (h *Handler) authFailed(c *gin.Context, err error, key, operation string) {
	if !session.IsAuthFailure(err) && !apperrors.IsClientError(err) {
		if errors.Is(err, apperrors.ErrNetworkFailure) {
			visitorFrom(c).Toasts().Error(translator(c).T(i18n.ErrorsNetwork))
		}
		h.handleError(c, err, operation)
		return
	}
	msg := translator(c).T(key)
	if detail := apperrors.Detail(err); detail != "" && !session.IsAuthFailure(err) {
		msg = detail
	}
	visitorFrom(c).Toasts().Error(msg)
	c.JSON(statusFor(err), gin.H{"error": msg})
}
