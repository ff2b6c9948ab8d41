package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
)

type lockoutsRepo struct {
	q querier
}

func (r *lockoutsRepo) Get(ctx context.Context, key domain.ScopedKey) (domain.LockoutState, error) {
	var (
		attempts int
		until    sql.NullInt64
		updated  int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT failed_attempts, locked_until, updated_at FROM lockouts
		WHERE tenant = ? AND identity_key = ?`,
		key.Tenant, key.Key.String(),
	).Scan(&attempts, &until, &updated)
	if err != nil {
		return domain.LockoutState{}, mapNotFound(err)
	}
	return domain.LockoutState{
		FailedAttempts: attempts,
		LockedUntil:    fromNullMillis(until),
		LastFailedAt:   fromMillis(updated),
	}, nil
}

func (r *lockoutsRepo) Put(ctx context.Context, key domain.ScopedKey, s domain.LockoutState, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO lockouts (tenant, identity_key, failed_attempts, locked_until, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant, identity_key) DO UPDATE SET
			failed_attempts = excluded.failed_attempts,
			locked_until = excluded.locked_until,
			updated_at = excluded.updated_at`,
		key.Tenant, key.Key.String(), s.FailedAttempts, toNullMillis(s.LockedUntil), toMillis(now),
	)
	return err
}

func (r *lockoutsRepo) Delete(ctx context.Context, key domain.ScopedKey) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM lockouts WHERE tenant = ? AND identity_key = ?`, key.Tenant, key.Key.String(),
	)
	return err
}

func (r *lockoutsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM lockouts WHERE locked_until IS NOT NULL AND locked_until <= ?`, toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *lockoutsRepo) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM lockouts WHERE locked_until IS NULL AND updated_at <= ?`, toMillis(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
