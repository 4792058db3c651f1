package record

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vmihailenco/msgpack/v5"
)

// PostgresStore implements DurableStore on a pgx connection pool. The
// payload is stored as the same compact binary blob the cache mirror uses,
// so both layers agree byte-for-byte on what a payload is.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool. The sessions table
// is created by Migrate.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get returns the record for sid, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, sid string) (*Record, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}

	var (
		payload   []byte
		createdAt time.Time
		updatedAt time.Time
		expiresAt *time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT payload, created_at, updated_at, expires_at FROM sessions WHERE sid = $1`,
		sid,
	).Scan(&payload, &createdAt, &updatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := &Record{
		SID:       sid,
		Payload:   make(map[string]any),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if expiresAt != nil {
		rec.ExpiresAt = *expiresAt
	}
	if len(payload) > 0 {
		if err := msgpack.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// Put upserts the record keyed by its sid.
func (s *PostgresStore) Put(ctx context.Context, r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	if r.SID == "" {
		return ErrEmptySID
	}

	payload, err := msgpack.Marshal(r.Payload)
	if err != nil {
		return err
	}

	var expiresAt *time.Time
	if !r.ExpiresAt.IsZero() {
		expiresAt = &r.ExpiresAt
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (sid, payload, created_at, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (sid) DO UPDATE
		 SET payload = EXCLUDED.payload,
		     updated_at = EXCLUDED.updated_at,
		     expires_at = EXCLUDED.expires_at`,
		r.SID, payload, r.CreatedAt, r.UpdatedAt, expiresAt,
	)
	return err
}

// Delete removes the record for sid. Deleting a missing record is a no-op.
func (s *PostgresStore) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrEmptySID
	}

	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
	return err
}

// DeleteExpired removes records whose expiry has passed. Expiry is enforced
// at read time regardless; this exists so operators can reclaim space from
// long-dead sessions on their own schedule.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
