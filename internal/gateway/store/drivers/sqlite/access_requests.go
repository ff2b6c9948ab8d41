package sqlite

import (
	"context"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/store"
)

type accessRequestsRepo struct {
	q querier
}

func (r *accessRequestsRepo) Create(ctx context.Context, rec store.AccessRequestRecord) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO access_requests (id, identity_key, tenant, page, page_name, reason, request_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Key.String(), rec.Tenant, rec.Request.RequestedPage, rec.Request.PageName,
		rec.Request.Reason, rec.Request.RequestType, toMillis(rec.CreatedAt),
	)
	return err
}

func (r *accessRequestsRepo) Submitted(ctx context.Context, key domain.IdentityKey, tenant, page string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM access_requests WHERE identity_key = ? AND tenant = ? AND page = ?
		)`, key.String(), tenant, page,
	).Scan(&exists)
	return exists, err
}

func (r *accessRequestsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM access_requests WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
