package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/store/drivers/sqlite"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func recordFor(pages ...string) *consolesdk.UserPermissions {
	up := &consolesdk.UserPermissions{
		PagePermissions: map[string]bool{},
		DatabasePermissions: map[string]consolesdk.DatabaseRights{
			"ledger": {Read: true},
			"budget": {},
		},
	}
	for _, p := range pages {
		up.PagePermissions[p] = true
	}
	return up
}

func newPermissionService(st *sqlite.Store, backend *fakeBackend, clk *testClock) *PermissionService {
	return &PermissionService{
		Backend:       backend,
		Store:         st,
		AdminUsername: "admin",
		CacheTTL:      5 * time.Minute,
		Logger:        slogx.Discard(),
		Now:           clk.Now,
	}
}

func TestPermissionService_LoadCachesPerTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)
	backend := &fakeBackend{byID: map[string]*consolesdk.UserPermissions{"42": recordFor("reports")}}
	svc := newPermissionService(st, backend, clk)
	sess := openSession(t, st, "42", false, clk.Now())

	rec, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	require.True(t, rec.PagePermissions["/reports"], "backend paths are normalised")

	_, err = svc.Load(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 1, backend.permCallCount())

	clk.Advance(5 * time.Minute)
	_, err = svc.Load(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 2, backend.permCallCount())

	_, err = svc.Refresh(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 3, backend.permCallCount())

	svc.Forget(sess.Scope())
	_, err = svc.Load(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 4, backend.permCallCount())
}

func TestPermissionService_UsernameFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)
	backend := &fakeBackend{byUsername: map[string]*consolesdk.UserPermissions{"alice": recordFor("/budget")}}
	svc := newPermissionService(st, backend, clk)

	t.Run("non-numeric key falls back to username", func(t *testing.T) {
		sess := openSession(t, st, "alice@acme.io", false, clk.Now())

		rec, err := svc.Load(ctx, sess)
		require.NoError(t, err)
		require.True(t, rec.PagePermissions["/budget"])
	})

	t.Run("numeric key does not fall back", func(t *testing.T) {
		sess := openSession(t, st, "77", false, clk.Now())

		rec, err := svc.Load(ctx, sess)
		require.Error(t, err)
		require.True(t, consolesdk.IsStatus(err, 404))
		require.Nil(t, rec)

		r, err := svc.Resolver(ctx, sess)
		require.Error(t, err)
		require.False(t, r.HasPageAccess("/budget"), "failed loads deny")
	})

	require.Equal(t, []string{"id:alice@acme.io", "username:alice", "id:77", "id:77"}, backend.permCalls)
}

func TestPermissionService_DiscardsStaleLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)

	t.Run("forgotten mid-flight", func(t *testing.T) {
		backend := &fakeBackend{
			byID:  map[string]*consolesdk.UserPermissions{"42": recordFor("/reports")},
			gates: []callGate{newGate()},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "42", false, clk.Now())

		errCh := make(chan error, 1)
		go func() {
			_, err := svc.Load(ctx, sess)
			errCh <- err
		}()

		<-backend.gates[0].entered
		svc.Forget(sess.Scope())
		close(backend.gates[0].release)

		require.ErrorIs(t, <-errCh, ErrStaleLoad)

		svc.mu.Lock()
		_, cached := svc.entries[sess.Scope()]
		svc.mu.Unlock()
		require.False(t, cached, "a stale response must not resurrect the entry")
	})

	t.Run("newer load wins", func(t *testing.T) {
		backend := &fakeBackend{
			byID:  map[string]*consolesdk.UserPermissions{"43": recordFor("/old")},
			gates: []callGate{newGate()},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "43", false, clk.Now())

		recCh := make(chan *domain.PermissionRecord, 1)
		go func() {
			rec, _ := svc.Load(ctx, sess)
			recCh <- rec
		}()
		<-backend.gates[0].entered

		backend.mu.Lock()
		backend.byID["43"] = recordFor("/new")
		backend.mu.Unlock()

		fresh, err := svc.Refresh(ctx, sess)
		require.NoError(t, err)
		require.True(t, fresh.PagePermissions["/new"])

		close(backend.gates[0].release)
		late := <-recCh
		require.True(t, late.PagePermissions["/new"], "the slow load hands back the current record")

		cached, err := svc.Load(ctx, sess)
		require.NoError(t, err)
		require.True(t, cached.PagePermissions["/new"])
		require.False(t, cached.PagePermissions["/old"])
	})

	t.Run("older load finishes first", func(t *testing.T) {
		backend := &fakeBackend{
			byID:  map[string]*consolesdk.UserPermissions{"44": recordFor("/reports")},
			gates: []callGate{newGate(), newGate()},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "44", false, clk.Now())

		decided := make(chan PageDecision, 1)
		go func() {
			d, _ := svc.DecidePage(ctx, sess, "/reports")
			decided <- d
		}()
		<-backend.gates[0].entered

		refreshed := make(chan *domain.PermissionRecord, 1)
		go func() {
			rec, _ := svc.Refresh(ctx, sess)
			refreshed <- rec
		}()
		<-backend.gates[1].entered

		// the older answer arrives first and is discarded
		close(backend.gates[0].release)
		select {
		case d := <-decided:
			t.Fatalf("page decided before the newer load published: %+v", d)
		case <-time.After(50 * time.Millisecond):
		}

		close(backend.gates[1].release)
		require.True(t, (<-refreshed).PagePermissions["/reports"])
		require.Equal(t, PageDecision{Path: "/reports", State: PageGranted}, <-decided)
		require.Equal(t, 2, backend.permCallCount())
	})

	t.Run("newer load fails", func(t *testing.T) {
		backend := &fakeBackend{
			byID:  map[string]*consolesdk.UserPermissions{"45": recordFor("/reports")},
			gates: []callGate{newGate(), newGate()},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "45", false, clk.Now())

		errCh := make(chan error, 1)
		go func() {
			_, err := svc.Load(ctx, sess)
			errCh <- err
		}()
		<-backend.gates[0].entered

		backend.mu.Lock()
		delete(backend.byID, "45")
		backend.mu.Unlock()

		refreshErr := make(chan error, 1)
		go func() {
			_, err := svc.Refresh(ctx, sess)
			refreshErr <- err
		}()
		<-backend.gates[1].entered

		close(backend.gates[0].release)
		close(backend.gates[1].release)

		require.Error(t, <-refreshErr)
		err := <-errCh
		require.Error(t, err)
		require.True(t, consolesdk.IsStatus(err, 404), "the waiting load reports the newer outcome")
	})
}

func TestPermissionService_DecidePageAndRequestAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)
	backend := &fakeBackend{byID: map[string]*consolesdk.UserPermissions{"42": recordFor("/reports")}}
	svc := newPermissionService(st, backend, clk)
	sess := openSession(t, st, "42", false, clk.Now())

	d, err := svc.DecidePage(ctx, sess, "reports")
	require.NoError(t, err)
	require.Equal(t, PageDecision{Path: "/reports", State: PageGranted}, d)

	d, err = svc.DecidePage(ctx, sess, "/budget")
	require.NoError(t, err)
	require.Equal(t, PageDenied, d.State)
	require.False(t, d.RequestSubmitted)

	require.ErrorIs(t, svc.RequestAccess(ctx, sess, domain.AccessRequest{RequestedPage: "  "}), ErrInvalidRequest)

	// a backend failure leaves the button available
	backend.accessErr = errors.New("connection refused")
	err = svc.RequestAccess(ctx, sess, domain.AccessRequest{RequestedPage: "budget", PageName: "Budget"})
	require.Error(t, err)

	d, err = svc.DecidePage(ctx, sess, "/budget")
	require.NoError(t, err)
	require.False(t, d.RequestSubmitted)

	backend.accessErr = nil
	require.NoError(t, svc.RequestAccess(ctx, sess, domain.AccessRequest{
		RequestedPage: "budget",
		PageName:      "Budget",
		Reason:        "quarter close",
	}))

	d, err = svc.DecidePage(ctx, sess, "/budget")
	require.NoError(t, err)
	require.Equal(t, PageDenied, d.State)
	require.True(t, d.RequestSubmitted)

	require.Equal(t, []consolesdk.AccessRequest{{
		Username:      "alice",
		CompanyName:   "acme",
		RequestedPage: "/budget",
		PageName:      "Budget",
		Reason:        "quarter close",
		RequestType:   "page_access",
	}}, backend.submissions)
}

func TestPermissionService_ListDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)

	t.Run("without a record the catalogue is not consulted", func(t *testing.T) {
		backend := &fakeBackend{}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "50", false, clk.Now())

		dbs, err := svc.ListDatabases(ctx, sess)
		require.Error(t, err)
		require.Empty(t, dbs)
		require.Zero(t, backend.dbCalls)
	})

	t.Run("filters the catalogue", func(t *testing.T) {
		backend := &fakeBackend{
			byID: map[string]*consolesdk.UserPermissions{"51": recordFor()},
			databases: []json.RawMessage{
				json.RawMessage(`"ledger"`),
				json.RawMessage(`{"name":"budget"}`),
				json.RawMessage(`{"size":3}`),
				json.RawMessage(`{"name":"archive"}`),
			},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "51", false, clk.Now())

		dbs, err := svc.ListDatabases(ctx, sess)
		require.NoError(t, err)
		require.Equal(t, []domain.Database{{Name: "ledger"}}, dbs)
	})

	t.Run("catalogue failure", func(t *testing.T) {
		backend := &fakeBackend{
			byID:  map[string]*consolesdk.UserPermissions{"52": recordFor()},
			dbErr: &consolesdk.APIError{StatusCode: 500, Code: consolesdk.ErrorCodeBackendError},
		}
		svc := newPermissionService(st, backend, clk)
		sess := openSession(t, st, "52", false, clk.Now())

		dbs, err := svc.ListDatabases(ctx, sess)
		require.Error(t, err)
		require.Empty(t, dbs)
	})
}
