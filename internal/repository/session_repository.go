package repository

import (
	"context"
	"time"

	"event-link-gateway/internal/model"
	"event-link-gateway/internal/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSessionPersister 每個訪客一列，三個欄位以單一 upsert 寫入
type PgSessionPersister struct {
	pool      *pgxpool.Pool
	visitorID string
}

func NewPgSessionPersister(pool *pgxpool.Pool, visitorID string) session.Persister {
	return &PgSessionPersister{
		pool:      pool,
		visitorID: visitorID,
	}
}

func (r *PgSessionPersister) Load(ctx context.Context) (model.Session, error) {
	query := `
		SELECT token, role, user_id
		FROM visitor_sessions
		WHERE visitor_id = $1
	`

	var s model.Session
	var role string
	err := r.pool.QueryRow(ctx, query, r.visitorID).Scan(
		&s.Token,
		&role,
		&s.UserID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return model.Session{}, nil
		}
		return model.Session{}, err
	}
	s.Role = model.ParseRole(role)

	return s, nil
}

func (r *PgSessionPersister) Save(ctx context.Context, s model.Session) error {
	query := `
		INSERT INTO visitor_sessions (visitor_id, token, role, user_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (visitor_id) DO UPDATE
		SET token = EXCLUDED.token,
			role = EXCLUDED.role,
			user_id = EXCLUDED.user_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		r.visitorID, s.Token, string(s.Role), s.UserID, time.Now().UTC(),
	)
	return err
}

func (r *PgSessionPersister) Clear(ctx context.Context) error {
	query := `
		DELETE FROM visitor_sessions
		WHERE visitor_id = $1
	`
	_, err := r.pool.Exec(ctx, query, r.visitorID)
	return err
}

// PurgeStale 刪除超過 ttl 未更新的 session
func PurgeStale(ctx context.Context, pool *pgxpool.Pool, ttl time.Duration) (int64, error) {
	query := `
		DELETE FROM visitor_sessions
		WHERE updated_at < $1
	`
	tag, err := pool.Exec(ctx, query, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
