// Package session 保存目前訪客的登入狀態，並以 channel 廣播變更。
package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"event-link-gateway/internal/model"
	apperrors "event-link-gateway/pkg/app_errors"
	"event-link-gateway/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthAPI 上游認證端點
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthToken, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthToken, error)
	Me(ctx context.Context, token string) (*model.User, error)
	UpgradeToOrganizer(ctx context.Context, token, inviteCode string) error
}

// Store 唯一跨元件共享的可變狀態：讀多寫少
type Store struct {
	mu        sync.RWMutex
	current   model.Session
	persister Persister
	auth      AuthAPI
	now       func() time.Time
	log       *zap.Logger

	subMu   sync.Mutex
	subs    map[int]chan model.Session
	nextSub int
}

type Option func(*Store)

// WithClock 注入時間來源 (token 到期判斷用)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(persister Persister, auth AuthAPI, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		auth:      auth,
		now:       time.Now,
		log:       logger.WithComponent("session"),
		subs:      make(map[int]chan model.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current 目前的 Session 副本
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Token() string {
	return s.Current().Token
}

func (s *Store) Role() model.Role {
	return s.Current().EffectiveRole()
}

func (s *Store) IsLoggedIn() bool {
	return s.Current().IsLoggedIn()
}

func (s *Store) IsStudent() bool {
	return s.Current().IsStudent()
}

func (s *Store) IsOrganizer() bool {
	return s.Current().IsOrganizer()
}

// Rehydrate 啟動時從 Persister 還原。
// token 已過期或 /me 失敗時視為未登入並清除；ctx 被取消時不清除。
func (s *Store) Rehydrate(ctx context.Context) error {
	saved, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	if saved.Token == "" {
		s.set(model.Session{})
		return nil
	}
	if tokenExpired(saved.Token, s.now()) {
		s.log.Info("persisted token expired, clear session", zap.String("user_id", saved.UserID))
		return s.Logout(ctx)
	}

	saved.User = nil
	s.set(saved)
	if _, err := s.LoadProfile(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			// 請求被取消不代表 token 失效，保留持久化的登入狀態
			s.log.Info("rehydrate profile canceled, keep session", zap.Error(err))
			return err
		}
		s.log.Warn("rehydrate profile failed, clear session", zap.Error(err))
		return s.Logout(ctx)
	}
	return nil
}

// Login 登入成功後持久化 token 並載入使用者資料
func (s *Store) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	token, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.authenticated(ctx, token)
}

// Register 註冊成功後與登入相同處理
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	token, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.authenticated(ctx, token)
}

// LoadProfile 重新取得 /me 並廣播
func (s *Store) LoadProfile(ctx context.Context) (*model.User, error) {
	token := s.Token()
	if token == "" {
		return nil, apperrors.ErrLoginRequired
	}
	user, err := s.auth.Me(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current.Token != token {
		// 期間已登出或換人登入
		s.mu.Unlock()
		return nil, apperrors.ErrLoginRequired
	}
	s.current.User = user
	next := s.current
	s.mu.Unlock()

	s.broadcast(next)
	return user, nil
}

// UpgradeToOrganizer 以邀請碼升級為主辦方，成功後刷新使用者資料並同步持久化的角色
func (s *Store) UpgradeToOrganizer(ctx context.Context, inviteCode string) (*model.User, error) {
	token := s.Token()
	if token == "" {
		return nil, apperrors.ErrLoginRequired
	}
	if err := s.auth.UpgradeToOrganizer(ctx, token, inviteCode); err != nil {
		return nil, err
	}
	user, err := s.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current.Role = user.Role
	persisted := s.current
	s.mu.Unlock()

	if err := s.persister.Save(ctx, persisted); err != nil {
		s.log.Error("persist upgraded role failed", zap.Error(err))
		return user, err
	}
	return user, nil
}

// Logout 清除持久化資料與記憶體狀態
func (s *Store) Logout(ctx context.Context) error {
	s.set(model.Session{})
	if err := s.persister.Clear(ctx); err != nil {
		s.log.Error("clear persisted session failed", zap.Error(err))
		return err
	}
	return nil
}

// Subscribe 訂閱 Session 變更：立即收到目前值，之後只保留最新值。
// 回傳的 cancel 會關閉 channel。
func (s *Store) Subscribe() (<-chan model.Session, func()) {
	ch := make(chan model.Session, 1)

	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch
	ch <- s.Current()
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) authenticated(ctx context.Context, token model.AuthToken) (*model.User, error) {
	next := model.SessionFromToken(token)
	if err := s.persister.Save(ctx, next); err != nil {
		return nil, err
	}
	s.set(next)

	user, err := s.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("session authenticated", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *Store) set(next model.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.broadcast(next)
}

func (s *Store) broadcast(next model.Session) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}

// tokenExpired 只讀取 exp，不驗證簽章 (簽章由上游負責)。
// 不是 JWT 或沒有 exp 時視為未過期，交給 /me 判斷。
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

// UserIDInt 將持久化的 user_id 轉為數字，無效時回傳 0
func UserIDInt(s model.Session) int {
	id, err := strconv.Atoi(s.UserID)
	if err != nil {
		return 0
	}
	return id
}

// IsAuthFailure 上游回應 401/403
func IsAuthFailure(err error) bool {
	return apperrors.IsUnauthorized(err) ||
		apperrors.StatusCode(err) == http.StatusForbidden ||
		errors.Is(err, apperrors.ErrLoginRequired)
}
