package service

import (
	"context"
	"testing"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	st := newTestStore(t)
	twoFactor := newTwoFactor(t, st, clk)

	expired := openSession(t, st, "1", false, clk.Now().Add(-2*time.Hour))
	live := openSession(t, st, "2", false, clk.Now())

	lapsed := clk.Now().Add(-time.Minute)
	active := clk.Now().Add(time.Minute)
	require.NoError(t, st.Lockouts().Put(ctx, domain.Scope("acme", "1"), domain.LockoutState{FailedAttempts: 5, LockedUntil: &lapsed}, clk.Now()))
	require.NoError(t, st.Lockouts().Put(ctx, domain.Scope("acme", "2"), domain.LockoutState{FailedAttempts: 5, LockedUntil: &active}, clk.Now()))
	require.NoError(t, st.Lockouts().Put(ctx, domain.Scope("acme", "3"), domain.LockoutState{FailedAttempts: 4}, clk.Now().Add(-time.Hour)))
	require.NoError(t, st.Lockouts().Put(ctx, domain.Scope("acme", "4"), domain.LockoutState{FailedAttempts: 2}, clk.Now()))

	require.NoError(t, st.AccessRequests().Create(ctx, store.AccessRequestRecord{
		ID: "old", Key: "2", Tenant: "acme",
		Request:   domain.AccessRequest{RequestedPage: "/budget"},
		CreatedAt: clk.Now().Add(-31 * 24 * time.Hour),
	}))

	_, err := twoFactor.BeginSetup(ctx, live)
	require.NoError(t, err)

	hk := NewHousekeepingService(st, twoFactor, slogx.Discard(), time.Minute)
	hk.Now = func() time.Time { return clk.Now().Add(11 * time.Minute) }
	hk.Cleanup(ctx)

	_, err = st.Sessions().Get(ctx, expired.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().Get(ctx, live.ID)
	require.NoError(t, err)

	_, err = st.Lockouts().Get(ctx, domain.Scope("acme", "1"))
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Lockouts().Get(ctx, domain.Scope("acme", "2"))
	require.ErrorIs(t, err, store.ErrNotFound, "locked until +1m is lapsed at +11m")
	_, err = st.Lockouts().Get(ctx, domain.Scope("acme", "3"))
	require.ErrorIs(t, err, store.ErrNotFound, "a counter idle for a lock duration is dropped")
	_, err = st.Lockouts().Get(ctx, domain.Scope("acme", "4"))
	require.NoError(t, err, "a counter from 11 minutes ago is still part of a run")

	submitted, err := st.AccessRequests().Submitted(ctx, "2", "acme", "/budget")
	require.NoError(t, err)
	require.False(t, submitted)

	status, err := twoFactor.Status(ctx, live)
	require.NoError(t, err)
	require.False(t, status.SetupPending)
}

func TestHousekeeping_StartStop(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	hk := NewHousekeepingService(st, nil, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
