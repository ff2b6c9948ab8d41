package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (
			id, identity_key, user_id, username, email, tenant, backend_token,
			requires_2fa, mfa_verified, created_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Key.String(), s.Identity.UserID, s.Identity.Username, s.Identity.Email,
		s.Identity.Tenant, s.BackendToken, s.Requires2FA, s.MFAVerified,
		toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                  domain.Session
		key                string
		created, expiresAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, identity_key, user_id, username, email, tenant, backend_token,
			requires_2fa, mfa_verified, created_at, expires_at
		FROM sessions WHERE id = ?`, id,
	).Scan(
		&s.ID, &key, &s.Identity.UserID, &s.Identity.Username, &s.Identity.Email,
		&s.Identity.Tenant, &s.BackendToken, &s.Requires2FA, &s.MFAVerified,
		&created, &expiresAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.Key = domain.IdentityKey(key)
	s.CreatedAt = fromMillis(created)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (r *sessionsRepo) SetTwoFactor(ctx context.Context, id string, requires, verified bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET requires_2fa = ?, mfa_verified = ? WHERE id = ?`,
		requires, verified, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) ClearTwoFactorForIdentity(ctx context.Context, key domain.ScopedKey) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET requires_2fa = 0, mfa_verified = 0 WHERE tenant = ? AND identity_key = ?`,
		key.Tenant, key.Key.String(),
	)
	return err
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
