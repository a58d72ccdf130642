package visitor

import (
	"context"
	"sync"
	"time"

	"event-link-gateway/internal/api"
	"event-link-gateway/internal/cache"
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/model"
	"event-link-gateway/internal/notification"
	"event-link-gateway/internal/repository"
	"event-link-gateway/internal/session"
	"event-link-gateway/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PersisterFactory 依訪客 id 建立 session 的持久化層
type PersisterFactory func(visitorID string) session.Persister

// MemoryPersisters 單機模式：訪客閒置被回收後，同一 sid 回來仍能還原登入狀態
func MemoryPersisters() PersisterFactory {
	var mu sync.Mutex
	byID := make(map[string]*session.MemoryPersister)
	return func(visitorID string) session.Persister {
		mu.Lock()
		defer mu.Unlock()
		p, ok := byID[visitorID]
		if !ok {
			p = session.NewMemoryPersister(model.Session{})
			byID[visitorID] = p
		}
		return p
	}
}

func RedisPersisters(client *redis.Client, ttl time.Duration) PersisterFactory {
	return func(visitorID string) session.Persister {
		return cache.NewRedisSessionPersister(client, visitorID, ttl)
	}
}

func PostgresPersisters(pool *pgxpool.Pool) PersisterFactory {
	return func(visitorID string) session.Persister {
		return repository.NewPgSessionPersister(pool, visitorID)
	}
}

type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Visitor
	creating singleflight.Group

	client     *api.Client
	persisters PersisterFactory
	scheduler  notification.Scheduler
	idle       time.Duration
	locale     string
	now        func() time.Time
	log        *zap.Logger
}

type Option func(*Registry)

// WithScheduler 測試時注入虛擬時間
func WithScheduler(s notification.Scheduler) Option {
	return func(r *Registry) { r.scheduler = s }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idle = d }
}

// WithLocale 無法從 Accept-Language 判斷時使用的語系
func WithLocale(locale string) Option {
	return func(r *Registry) { r.locale = locale }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(client *api.Client, persisters PersisterFactory, opts ...Option) *Registry {
	r := &Registry{
		visitors:   make(map[string]*Visitor),
		client:     client,
		persisters: persisters,
		idle:       30 * time.Minute,
		locale:     "en",
		now:        time.Now,
		log:        logger.WithComponent("visitor"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.persisters == nil {
		r.persisters = MemoryPersisters()
	}
	return r
}

func (r *Registry) Locale() string {
	return r.locale
}

// Get 只取得已存在的訪客
func (r *Registry) Get(id string) (*Visitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visitors[id]
	if ok {
		v.touch(r.now())
	}
	return v, ok
}

type created struct {
	visitor *Visitor
	fresh   bool
}

// GetOrCreate sid 不是合法 uuid 時發新的 id；
// 已知 id 但不在記憶體中時 (重啟或閒置回收) 從 Persister 還原 session。
// 同一 id 的並行請求只會還原一次。回傳的 bool 代表是否新建。
func (r *Registry) GetOrCreate(ctx context.Context, id string) (*Visitor, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if v, ok := r.Get(id); ok {
		return v, false, nil
	}

	res, err, shared := r.creating.Do(id, func() (interface{}, error) {
		if v, ok := r.Get(id); ok {
			return created{visitor: v}, nil
		}
		// 還原結果由所有等待中的請求共用，不跟隨單一請求取消
		v, err := r.create(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.visitors[id] = v
		r.mu.Unlock()
		return created{visitor: v, fresh: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	c := res.(created)
	return c.visitor, c.fresh && !shared, nil
}

func (r *Registry) create(ctx context.Context, id string) (*Visitor, error) {
	log := logger.WithVisitor("visitor", id)
	v := newVisitor(id, r.client, r.persisters(id), r.scheduler, i18n.New("", r.locale), log)
	if err := v.start(); err != nil {
		return nil, err
	}
	if err := v.store.Rehydrate(ctx); err != nil {
		// 還原失敗不影響瀏覽，視為未登入
		log.Warn("rehydrate session failed", zap.Error(err))
	}
	v.touch(r.now())
	log.Debug("visitor created")
	return v, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep 回收閒置超過 idle 的訪客，回傳回收數量。
// 仍有 toast 串流連線的訪客不算閒置。
func (r *Registry) Sweep() int {
	now := r.now()
	var stale []*Visitor

	r.mu.Lock()
	for id, v := range r.visitors {
		if v.toasts.Subscribers() > 0 {
			v.touch(now)
			continue
		}
		if v.idleSince(now) >= r.idle {
			stale = append(stale, v)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, v := range stale {
		v.Close()
	}
	if len(stale) > 0 {
		r.log.Info("idle visitors evicted", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run 定期回收閒置訪客，ctx 結束時關閉所有訪客
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Visitor, 0, len(r.visitors))
	for id, v := range r.visitors {
		all = append(all, v)
		delete(r.visitors, id)
	}
	r.mu.Unlock()

	for _, v := range all {
		v.Close()
	}
}
