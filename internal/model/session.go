package model

import (
	"encoding/json"
	"strconv"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
)

// IsValid 驗證角色是否有效
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleOrganizer:
		return true
	}
	return false
}

// ParseRole 上游以 "organizator" 表示主辦方；無法辨識的角色回傳空字串
func ParseRole(raw string) Role {
	if raw == "organizator" {
		return RoleOrganizer
	}
	if r := Role(raw); r.IsValid() {
		return r
	}
	return ""
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRole(raw)
	return nil
}

// User /me 回傳的使用者資料
type User struct {
	ID       int     `json:"id"`
	Email    string  `json:"email"`
	Role     Role    `json:"role"`
	FullName *string `json:"full_name,omitempty"`
}

// AuthToken /login 與 /register 的回應
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
	UserID      int    `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterRequest struct {
	Email           string  `json:"email" form:"email" binding:"required"`
	Password        string  `json:"password" form:"password" binding:"required"`
	ConfirmPassword string  `json:"confirm_password" form:"confirm_password" binding:"required"`
	FullName        *string `json:"full_name,omitempty" form:"full_name"`
}

// Session 持久化的三個欄位 (token / role / user_id)，外加已載入的使用者資料
type Session struct {
	Token  string `json:"token,omitempty"`
	Role   Role   `json:"role,omitempty"`
	UserID string `json:"user_id,omitempty"`
	User   *User  `json:"user,omitempty"`
}

// SessionFromToken 登入或註冊成功後建立 Session
func SessionFromToken(token AuthToken) Session {
	return Session{
		Token:  token.AccessToken,
		Role:   token.Role,
		UserID: strconv.Itoa(token.UserID),
	}
}

func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}

// EffectiveRole 已載入的使用者角色優先，否則使用持久化的角色
func (s Session) EffectiveRole() Role {
	if s.User != nil && s.User.Role != "" {
		return s.User.Role
	}
	return s.Role
}

func (s Session) IsStudent() bool {
	return s.EffectiveRole() == RoleStudent
}

func (s Session) IsOrganizer() bool {
	return s.EffectiveRole() == RoleOrganizer
}
