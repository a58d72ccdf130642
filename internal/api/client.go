// Package api 上游 Event Link REST API 的 client。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"event-link-gateway/internal/model"
	apperrors "event-link-gateway/pkg/app_errors"
)

// TokenSource 回傳目前的 bearer token，未登入時回傳空字串
type TokenSource func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// NewClient httpClient 為 nil 時使用 10 秒 timeout 的預設 client
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// As 回傳共用連線、但帶入指定 token 來源的 client
func (c *Client) As(token TokenSource) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListEvents GET /api/events
func (c *Client) ListEvents(ctx context.Context, query url.Values) (model.PaginatedEvents, error) {
	var out model.PaginatedEvents
	err := c.do(ctx, http.MethodGet, "/api/events", query, nil, &out, "")
	return out, err
}

func (c *Client) GetEvent(ctx context.Context, id int) (model.EventDetail, error) {
	var out model.EventDetail
	err := c.do(ctx, http.MethodGet, eventPath(id), nil, nil, &out, "")
	if apperrors.StatusCode(err) == http.StatusNotFound {
		return out, fmt.Errorf("%w: %w", apperrors.ErrEventNotFound, err)
	}
	return out, err
}

func (c *Client) RegisterForEvent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, eventPath(id)+"/register", nil, struct{}{}, nil, "")
}

func (c *Client) UnregisterFromEvent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, eventPath(id)+"/register", nil, nil, nil, "")
}

func (c *Client) DeleteEvent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, eventPath(id), nil, nil, nil, "")
}

// CloneEvent 複製活動，回傳新建立的活動
func (c *Client) CloneEvent(ctx context.Context, id int) (model.EventSummary, error) {
	var out model.EventSummary
	err := c.do(ctx, http.MethodPost, eventPath(id)+"/clone", nil, struct{}{}, &out, "")
	return out, err
}

// Recommendations GET /api/recommendations (僅學生)
func (c *Client) Recommendations(ctx context.Context) ([]model.EventSummary, error) {
	var out []model.EventSummary
	err := c.do(ctx, http.MethodGet, "/api/recommendations", nil, nil, &out, "")
	return out, err
}

func (c *Client) MyEvents(ctx context.Context) ([]model.EventSummary, error) {
	var out []model.EventSummary
	err := c.do(ctx, http.MethodGet, "/api/me/events", nil, nil, &out, "")
	return out, err
}

func (c *Client) OrganizerEvents(ctx context.Context) ([]model.EventSummary, error) {
	var out []model.EventSummary
	err := c.do(ctx, http.MethodGet, "/api/organizer/events", nil, nil, &out, "")
	return out, err
}

func (c *Client) Participants(ctx context.Context, eventID int) (model.ParticipantList, error) {
	var out model.ParticipantList
	err := c.do(ctx, http.MethodGet, "/api/organizer/events/"+strconv.Itoa(eventID)+"/participants", nil, nil, &out, "")
	if apperrors.StatusCode(err) == http.StatusNotFound {
		return out, fmt.Errorf("%w: %w", apperrors.ErrEventNotFound, err)
	}
	return out, err
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthToken, error) {
	var out model.AuthToken
	err := c.do(ctx, http.MethodPost, "/login", nil, req, &out, "")
	return out, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthToken, error) {
	var out model.AuthToken
	err := c.do(ctx, http.MethodPost, "/register", nil, req, &out, "")
	return out, err
}

// Me 以指定 token 取得使用者資料，不經過 TokenSource
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out, token); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpgradeToOrganizer(ctx context.Context, token, inviteCode string) error {
	body := map[string]string{"invite_code": inviteCode}
	return c.do(ctx, http.MethodPost, "/organizer/upgrade", nil, body, nil, token)
}

func eventPath(id int) string {
	return "/api/events/" + strconv.Itoa(id)
}

// do 送出請求；token 非空時優先於 TokenSource
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, token string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" && c.token != nil {
		token = c.token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %w", apperrors.ErrNetworkFailure, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &apperrors.APIError{Status: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parseDetail detail 可能是字串或驗證錯誤陣列，只取字串
func parseDetail(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var detail string
	if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
		return detail
	}
	if body.Error != nil {
		return body.Error.Message
	}
	return ""
}
