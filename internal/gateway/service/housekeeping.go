package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/metrics"
	"github.com/ifrsconsole/console/internal/gateway/store"
)

// accessRequestRetention is how long a "request sent" flag is kept.
const accessRequestRetention = 30 * 24 * time.Hour

// HousekeepingService periodically removes expired sessions, lapsed lockouts,
// idle failure counters, old access-request flags and abandoned 2FA setups. Nothing it deletes is
// authoritative: lock expiry is evaluated on every check regardless.
type HousekeepingService struct {
	Store     store.Store
	TwoFactor *TwoFactorService
	Logger    *slog.Logger
	Interval  time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(st store.Store, twoFactor *TwoFactorService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		TwoFactor: twoFactor,
		Logger:    logger,
		Interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Cleanup runs one pass. Each step is independent; a failure in one does not
// stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.now()
	s.Logger.Debug("starting housekeeping cleanup")

	policy := domain.DefaultLockoutPolicy
	if s.TwoFactor != nil {
		policy = s.TwoFactor.policy()
	}

	steps := []struct {
		kind string
		fn   func() (int64, error)
	}{
		{"sessions", func() (int64, error) { return s.Store.Sessions().DeleteExpired(ctx, now) }},
		{"lockouts", func() (int64, error) { return s.Store.Lockouts().DeleteExpired(ctx, now) }},
		{"idle_lockouts", func() (int64, error) { return s.Store.Lockouts().DeleteIdle(ctx, now.Add(-policy.Duration)) }},
		{"access_requests", func() (int64, error) {
			return s.Store.AccessRequests().DeleteOlderThan(ctx, now.Add(-accessRequestRetention))
		}},
	}

	var total int64
	for _, step := range steps {
		n, err := step.fn()
		if err != nil {
			s.Logger.Error("failed to delete expired records", "kind", step.kind, "error", err)
			continue
		}
		metrics.HousekeepingDeletedTotal.WithLabelValues(step.kind).Add(float64(n))
		total += n
	}

	if s.TwoFactor != nil {
		n := s.TwoFactor.PurgeExpiredSetups(now)
		metrics.HousekeepingDeletedTotal.WithLabelValues("pending_setups").Add(float64(n))
		total += int64(n)
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
}
