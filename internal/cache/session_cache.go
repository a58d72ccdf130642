package cache

import (
	"context"
	"fmt"
	"time"

	"event-link-gateway/internal/model"
	"event-link-gateway/internal/session"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken  = "token"
	fieldRole   = "role"
	fieldUserID = "user_id"
)

// RedisSessionPersister 每個訪客一個 Redis hash，token / role / user_id 一起寫入、一起刪除
type RedisSessionPersister struct {
	client    *redis.Client
	visitorID string
	ttl       time.Duration
}

func NewRedisSessionPersister(client *redis.Client, visitorID string, ttl time.Duration) session.Persister {
	return &RedisSessionPersister{
		client:    client,
		visitorID: visitorID,
		ttl:       ttl,
	}
}

// Session key
func SessionKey(visitorID string) string {
	return fmt.Sprintf("visitor:%s:session", visitorID)
}

func (p *RedisSessionPersister) key() string {
	return SessionKey(p.visitorID)
}

func (p *RedisSessionPersister) Load(ctx context.Context) (model.Session, error) {
	result, err := p.client.HGetAll(ctx, p.key()).Result()
	if err != nil {
		return model.Session{}, err
	}

	// key 不存在代表未登入
	if len(result) == 0 || result[fieldToken] == "" {
		return model.Session{}, nil
	}

	return model.Session{
		Token:  result[fieldToken],
		Role:   model.ParseRole(result[fieldRole]),
		UserID: result[fieldUserID],
	}, nil
}

// Save 以 MULTI/EXEC 寫入三個欄位並更新 TTL
func (p *RedisSessionPersister) Save(ctx context.Context, s model.Session) error {
	key := p.key()
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			fieldToken:  s.Token,
			fieldRole:   string(s.Role),
			fieldUserID: s.UserID,
		})
		if p.ttl > 0 {
			pipe.Expire(ctx, key, p.ttl)
		}
		return nil
	})
	return err
}

func (p *RedisSessionPersister) Clear(ctx context.Context) error {
	return p.client.Del(ctx, p.key()).Err()
}
