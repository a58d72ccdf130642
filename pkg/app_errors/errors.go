package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNetworkFailure = errors.New("network failure")
	ErrLoginRequired  = errors.New("login required")
	ErrVisitorClosed  = errors.New("visitor closed")
)

// APIError 上游 API 回傳的非 2xx 回應
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// StatusCode 取得上游回應狀態碼，不是 APIError 時回傳 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Detail 取得上游回應附帶的說明文字
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// IsConflict 報名時 409 代表名額已滿
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) || StatusCode(err) == http.StatusNotFound
}

// IsClientError 4xx 回應
func IsClientError(err error) bool {
	code := StatusCode(err)
	return code >= 400 && code < 500
}
