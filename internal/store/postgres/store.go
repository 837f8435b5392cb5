package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

type Options struct {
	// Now overrides the clock used for created_at/updated_at stamps.
	Now func() time.Time
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	now := options.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{pool: pool, now: now}
}

// Ping checks connectivity for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// outboxLockKey serializes outbox writers until commit so seq order matches
// commit order.
const outboxLockKey int64 = 0x72656c6179

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, tenantID, eventType string, payload interface{}, createdAt time.Time) error {
	payloadJSON, err := jsonBytes(payload)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, outboxLockKey); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, tenant_id, type, payload_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), tenantID, eventType, payloadJSON, createdAt)
	return err
}

func jsonBytes(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
