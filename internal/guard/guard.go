// Package guard 導航前的授權判斷。所有 guard 都是純函式，不做任何網路請求。
package guard

import (
	"net/url"

	"event-link-gateway/internal/model"
)

const (
	LoginPath     = "/login"
	HomePath      = "/"
	ForbiddenPath = "/forbidden"

	RedirectParam = "redirect"
)

// Result Allow 或 RedirectTo(path, query)
type Result struct {
	allowed bool
	Path    string
	Query   url.Values
}

func Allow() Result {
	return Result{allowed: true}
}

func RedirectTo(path string, query url.Values) Result {
	return Result{Path: path, Query: query}
}

func (r Result) Allowed() bool {
	return r.allowed
}

// Location 導向目標 (path + query)，Allow 時為空字串
func (r Result) Location() string {
	if r.allowed {
		return ""
	}
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Navigation 請求的目標 URL 與目前所在的 URL
type Navigation struct {
	Target  string
	Current string
}

// Meta 路由附帶的授權資訊
type Meta struct {
	Role model.Role
}

// Authenticated 未登入導向登入頁並帶上原請求 URL；角色不符導向首頁
func Authenticated(session model.Session, meta Meta, nav Navigation) Result {
	if !session.IsLoggedIn() {
		return loginRedirect(nav.Target)
	}
	if meta.Role != "" && session.EffectiveRole() != meta.Role {
		return RedirectTo(HomePath, nil)
	}
	return Allow()
}

// OrganizerOnly 未登入導向登入頁並帶上目前 URL；非主辦方導向 forbidden
func OrganizerOnly(session model.Session, nav Navigation) Result {
	if !session.IsLoggedIn() {
		current := nav.Current
		if current == "" {
			current = nav.Target
		}
		return loginRedirect(current)
	}
	if !session.IsOrganizer() {
		return RedirectTo(ForbiddenPath, nil)
	}
	return Allow()
}

// PublicOnly 登入/註冊頁：已登入者導回首頁
func PublicOnly(session model.Session) Result {
	if session.IsLoggedIn() {
		return RedirectTo(HomePath, nil)
	}
	return Allow()
}

func loginRedirect(redirect string) Result {
	if redirect == "" {
		return RedirectTo(LoginPath, nil)
	}
	return RedirectTo(LoginPath, url.Values{RedirectParam: {redirect}})
}
