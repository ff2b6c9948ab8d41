package sqlite

import (
	"context"
	"time"
)

type clientStateRepo struct {
	q querier
}

func (r *clientStateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.q.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return value, nil
}

func (r *clientStateRepo) Put(ctx context.Context, key string, value []byte, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, toMillis(now),
	)
	return err
}

func (r *clientStateRepo) Delete(ctx context.Context, key string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key)
	return err
}
