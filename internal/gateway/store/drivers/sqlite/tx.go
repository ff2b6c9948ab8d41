package sqlite

import (
	"context"
	"database/sql"

	"github.com/ifrsconsole/console/internal/gateway/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ClientState() store.ClientState       { return &clientStateRepo{q: t.tx} }
func (t *txStore) Lockouts() store.Lockouts             { return &lockoutsRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions             { return &sessionsRepo{q: t.tx} }
func (t *txStore) AccessRequests() store.AccessRequests { return &accessRequestsRepo{q: t.tx} }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }
