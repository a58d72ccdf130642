package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"event-link-gateway/internal/api"
	"event-link-gateway/internal/model"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type headerLog struct {
	mu     sync.Mutex
	values []string
}

func (h *headerLog) add(v string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = append(h.values, v)
}

func (h *headerLog) all() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.values...)
}

func newUpstream(t *testing.T) (*httptest.Server, *headerLog) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auths := &headerLog{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auths.add(c.GetHeader("Authorization"))
		c.Next()
	})

	r.GET("/api/events", func(c *gin.Context) {
		assert.Equal(t, "jazz", c.Query("search"))
		assert.Equal(t, "music,outdoor", c.Query("tags_csv"))
		c.JSON(http.StatusOK, gin.H{
			"items": []gin.H{{
				"id": 1, "title": "Jazz Night", "start_time": "2025-01-10T18:00:00Z",
				"owner_id": 2, "cover_url": nil, "seats_taken": 3, "max_seats": 10,
				"tags": []gin.H{{"id": 1, "name": "music"}},
			}},
			"total": 41, "page": 2, "page_size": 20,
		})
	})
	r.GET("/api/events/:id", func(c *gin.Context) {
		if c.Param("id") == "404" {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Evenimentul nu există"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id": 7, "title": "Workshop", "start_time": "2025-02-01T09:00:00Z", "owner_id": 2,
			"cover_url": nil, "tags": []gin.H{}, "seats_taken": 4, "max_seats": 5,
			"is_registered": false, "is_owner": false, "available_seats": 1,
		})
	})
	r.POST("/api/events/:id/register", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "http_409", "message": "Full"}, "detail": "Full"})
	})
	r.DELETE("/api/events/:id/register", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 9, "email": "a@b.ro", "role": "organizator"})
	})
	r.POST("/login", func(c *gin.Context) {
		var req model.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Password != "secret" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": "tok", "token_type": "bearer", "role": "student", "user_id": 9})
	})
	r.POST("/organizer/upgrade", func(c *gin.Context) {
		var body struct {
			InviteCode string `json:"invite_code"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.InviteCode != "OK" {
			c.JSON(http.StatusForbidden, gin.H{"detail": []gin.H{{"msg": "bad"}}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "upgraded"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, auths
}

func TestClient_ListEvents(t *testing.T) {
	srv, auths := newUpstream(t)
	client := api.NewClient(srv.URL+"/", nil).As(func() string { return "abc" })

	query := url.Values{"search": {"jazz"}, "tags_csv": {"music,outdoor"}}
	page, err := client.ListEvents(context.Background(), query)

	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []string{"music"}, page.Items[0].TagNames())
	assert.Nil(t, page.Items[0].CoverURL)
	assert.Equal(t, []string{"Bearer abc"}, auths.all())
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	srv, auths := newUpstream(t)
	client := api.NewClient(srv.URL, nil).As(func() string { return "" })

	detail, err := client.GetEvent(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, detail.AvailableSeats)
	assert.Equal(t, 1, *detail.AvailableSeats)
	assert.Equal(t, []string{""}, auths.all())
}

func TestClient_Errors(t *testing.T) {
	srv, _ := newUpstream(t)
	client := api.NewClient(srv.URL, nil)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetEvent(ctx, 404)
		assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Evenimentul nu există", apperrors.Detail(err))
	})

	t.Run("conflict", func(t *testing.T) {
		err := client.RegisterForEvent(ctx, 1)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "Full", apperrors.Detail(err))
	})

	t.Run("detail array falls back to empty", func(t *testing.T) {
		err := client.UpgradeToOrganizer(ctx, "tok", "nope")
		assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))
		assert.Empty(t, apperrors.Detail(err))
	})

	t.Run("unauthorized", func(t *testing.T) {
		_, err := client.Login(ctx, model.LoginRequest{Email: "a@b.ro", Password: "x"})
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("network", func(t *testing.T) {
		dead := api.NewClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second})
		_, err := dead.ListEvents(ctx, nil)
		assert.True(t, errors.Is(err, apperrors.ErrNetworkFailure))
		assert.Zero(t, apperrors.StatusCode(err))
	})
}

func TestClient_AuthEndpoints(t *testing.T) {
	srv, auths := newUpstream(t)
	client := api.NewClient(srv.URL, nil).As(func() string { return "ignored" })
	ctx := context.Background()

	token, err := client.Login(ctx, model.LoginRequest{Email: "a@b.ro", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.Equal(t, model.RoleStudent, token.Role)

	user, err := client.Me(ctx, "explicit")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrganizer, user.Role)

	require.NoError(t, client.UpgradeToOrganizer(ctx, "explicit", "OK"))
	require.NoError(t, client.UnregisterFromEvent(ctx, 3))

	assert.Equal(t, []string{"Bearer ignored", "Bearer explicit", "Bearer explicit", "Bearer ignored"}, auths.all())
}
