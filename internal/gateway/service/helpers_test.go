package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/store/drivers/sqlite"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/cryptox"
	"github.com/ifrsconsole/console/pkg/idx"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/ifrsconsole/console/pkg/totpx"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *testClock { return &testClock{t: epoch} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "console.db") + "?_pragma=busy_timeout(5000)"
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()

	s, err := cryptox.NewSealer([]byte("test master key material, not secret"))
	require.NoError(t, err)
	return s
}

func newTwoFactor(t *testing.T, st *sqlite.Store, clk *testClock) *TwoFactorService {
	t.Helper()

	return &TwoFactorService{
		Store:  st,
		Sealer: newTestSealer(t),
		Issuer: "IFRS Console",
		Policy: domain.DefaultLockoutPolicy,
		Verify: totpx.DefaultVerifyOptions,
		Logger: slogx.Discard(),
		Now:    clk.Now,
	}
}

// openSession stores a gateway session for key in tenant acme the way
// AuthService.Login would, minus the backend round trip.
func openSession(t *testing.T, st *sqlite.Store, key domain.IdentityKey, requires bool, now time.Time) domain.Session {
	t.Helper()
	return openTenantSession(t, st, "acme", "alice", key, requires, now)
}

func openTenantSession(t *testing.T, st *sqlite.Store, tenant, username string, key domain.IdentityKey, requires bool, now time.Time) domain.Session {
	t.Helper()

	sess := domain.Session{
		ID: idx.NewAt(now).String(),
		Identity: domain.Identity{
			UserID:   key.String(),
			Username: username,
			Email:    username + "@" + tenant + ".io",
			Tenant:   tenant,
		},
		Key:          key,
		BackendToken: "backend-token",
		Requires2FA:  requires,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, st.Sessions().Create(context.Background(), sess))
	return sess
}

func reloadSession(t *testing.T, st *sqlite.Store, id string) domain.Session {
	t.Helper()

	sess, err := st.Sessions().Get(context.Background(), id)
	require.NoError(t, err)
	return sess
}

func currentCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	code, err := totpx.Code(secret, at, totpx.DefaultVerifyOptions)
	require.NoError(t, err)
	return code
}

// wrongCode returns a well-formed code that is valid at no step in the
// verification window around at.
func wrongCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	valid := map[string]bool{}
	for _, d := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		valid[currentCode(t, secret, at.Add(d))] = true
	}
	for _, c := range []string{"000000", "111111", "222222", "333333"} {
		if !valid[c] {
			return c
		}
	}
	t.Fatal("no wrong code available")
	return ""
}

type callGate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() callGate {
	return callGate{entered: make(chan struct{}), release: make(chan struct{})}
}

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu sync.Mutex

	loginResp *consolesdk.LoginResponse
	loginErr  error
	logoutErr error

	byID       map[string]*consolesdk.UserPermissions
	byUsername map[string]*consolesdk.UserPermissions
	databases  []json.RawMessage
	dbErr      error
	accessErr  error

	// Permission call n signals gates[n].entered and blocks until
	// gates[n].release is closed. Calls past the end of gates run freely.
	gates []callGate

	permCalls   []string
	dbCalls     int
	logouts     []string
	submissions []consolesdk.AccessRequest
}

func (f *fakeBackend) Login(_ context.Context, _ consolesdk.LoginRequest) (*consolesdk.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	return f.logoutErr
}

func (f *fakeBackend) UserInfo(_ context.Context, _ string) (*consolesdk.UserInfo, error) {
	return &consolesdk.UserInfo{CompanyName: "acme", Username: "alice", UserID: "42"}, nil
}

func (f *fakeBackend) UserPermissions(_ context.Context, _, id, _ string) (*consolesdk.UserPermissions, error) {
	f.mu.Lock()
	f.permCalls = append(f.permCalls, "id:"+id)
	n := len(f.permCalls) - 1
	up, ok := f.byID[id]
	f.mu.Unlock()

	// the answer is decided before blocking, like a response already in flight
	if n < len(f.gates) {
		f.gates[n].entered <- struct{}{}
		<-f.gates[n].release
	}

	if ok {
		return up, nil
	}
	return nil, &consolesdk.APIError{StatusCode: 404, Code: consolesdk.ErrorCodeNotFound}
}

func (f *fakeBackend) FindUserPermissions(_ context.Context, _, _, username string) (*consolesdk.UserPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permCalls = append(f.permCalls, "username:"+username)
	if up, ok := f.byUsername[username]; ok {
		return up, nil
	}
	return nil, &consolesdk.APIError{StatusCode: 404, Code: consolesdk.ErrorCodeNotFound}
}

func (f *fakeBackend) Databases(_ context.Context, _, _ string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dbCalls++
	return f.databases, f.dbErr
}

func (f *fakeBackend) SubmitAccessRequest(_ context.Context, _ string, req consolesdk.AccessRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accessErr != nil {
		return f.accessErr
	}
	f.submissions = append(f.submissions, req)
	return nil
}

func (f *fakeBackend) permCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.permCalls)
}
