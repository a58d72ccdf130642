package session

import (
	"context"
	"sync"

	"event-link-gateway/internal/model"
)

// Persister 持久化 token / role / user_id 三個欄位，三者一起寫入、一起清除
type Persister interface {
	Load(ctx context.Context) (model.Session, error)
	Save(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}

// MemoryPersister 記憶體版 Persister，供測試與單機模式使用
type MemoryPersister struct {
	mu    sync.Mutex
	saved model.Session
}

func NewMemoryPersister(initial model.Session) *MemoryPersister {
	initial.User = nil
	return &MemoryPersister{saved: initial}
}

func (p *MemoryPersister) Load(ctx context.Context) (model.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved, nil
}

func (p *MemoryPersister) Save(ctx context.Context, s model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = model.Session{Token: s.Token, Role: s.Role, UserID: s.UserID}
	return nil
}

func (p *MemoryPersister) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = model.Session{}
	return nil
}
