package store

import (
	"context"
	"errors"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the gateway's local state.
// Sub-repositories are reached through methods so a Tx-scoped Store hands out
// repositories bound to the same transaction.
type Store interface {
	ClientState() ClientState
	Lockouts() Lockouts
	Sessions() Sessions
	AccessRequests() AccessRequests

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ClientState is the durable key-value store that replaces browser local
// storage. Values are opaque; callers seal anything sensitive.
type ClientState interface {
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the value under key.
	Put(ctx context.Context, key string, value []byte, now time.Time) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type Lockouts interface {
	// Get returns the stored state for key or ErrNotFound. LastFailedAt is the
	// time of the last Put. Callers evaluate expiry themselves with
	// domain.LockoutPolicy.Current.
	Get(ctx context.Context, key domain.ScopedKey) (domain.LockoutState, error)

	// Put upserts the state for key.
	Put(ctx context.Context, key domain.ScopedKey, s domain.LockoutState, now time.Time) error

	// Delete clears the counter, e.g. after a successful verification.
	Delete(ctx context.Context, key domain.ScopedKey) error

	// DeleteExpired removes locks whose locked_until is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteIdle removes counters that are not locked and were last updated
	// at or before cutoff.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

type Sessions interface {
	// Create inserts a new session (id is a ULID minted by the caller).
	Create(ctx context.Context, s domain.Session) error

	// Get returns a session by id or ErrNotFound. Expired sessions are
	// returned too; callers decide.
	Get(ctx context.Context, id string) (domain.Session, error)

	// SetTwoFactor updates the per-login 2FA flags.
	SetTwoFactor(ctx context.Context, id string, requires, verified bool) error

	// ClearTwoFactorForIdentity drops the 2FA requirement on every open
	// session of key within its tenant, used when the identity disables 2FA.
	ClearTwoFactorForIdentity(ctx context.Context, key domain.ScopedKey) error

	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions whose expires_at is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AccessRequestRecord is a submitted access request, kept so the UI can show
// "request sent" instead of the button.
type AccessRequestRecord struct {
	ID        string
	Key       domain.IdentityKey
	Tenant    string
	Request   domain.AccessRequest
	CreatedAt time.Time
}

type AccessRequests interface {
	Create(ctx context.Context, r AccessRequestRecord) error

	// Submitted reports whether key already asked for page within tenant.
	Submitted(ctx context.Context, key domain.IdentityKey, tenant, page string) (bool, error)

	// DeleteOlderThan prunes records created before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
