package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/metrics"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/pkg/cryptox"
	"github.com/ifrsconsole/console/pkg/totpx"
)

const (
	enrollmentKeyPrefix = "2fa_"
	defaultSetupTTL     = 10 * time.Minute

	methodTOTP   = "totp"
	methodBackup = "backup_code"
)

// TwoFactorStatus is what the settings page and the verification prompt need
// to render.
type TwoFactorStatus struct {
	Enabled              bool       `json:"enabled"`
	Verified             bool       `json:"verified"`
	Requires2FA          bool       `json:"requires_2fa"`
	SessionVerified      bool       `json:"session_verified"`
	SetupPending         bool       `json:"setup_pending"`
	BackupCodesRemaining int        `json:"backup_codes_remaining"`
	FailedAttempts       int        `json:"failed_attempts"`
	Locked               bool       `json:"locked"`
	LockedUntil          *time.Time `json:"locked_until,omitempty"`
	RemainingSeconds     int64      `json:"remaining_seconds"`
}

type pendingSetup struct {
	secret      string
	backupCodes []string
	expiresAt   time.Time
}

// TwoFactorService drives enrollment and per-session verification. The
// enrollment blob lives sealed in the client-state store; a secret that is
// still being set up only ever lives in memory.
type TwoFactorService struct {
	Store    store.Store
	Sealer   *cryptox.Sealer
	Issuer   string
	Policy   domain.LockoutPolicy
	Verify   totpx.VerifyOptions
	SetupTTL time.Duration
	QRSize   int
	Logger   *slog.Logger
	Now      func() time.Time

	mu      sync.Mutex
	pending map[domain.ScopedKey]pendingSetup
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TwoFactorService) policy() domain.LockoutPolicy {
	if s.Policy.Threshold <= 0 || s.Policy.Duration <= 0 {
		return domain.DefaultLockoutPolicy
	}
	return s.Policy
}

func (s *TwoFactorService) verifyOpts() totpx.VerifyOptions {
	if s.Verify.Period <= 0 {
		return totpx.DefaultVerifyOptions
	}
	return s.Verify
}

func enrollmentKey(key domain.ScopedKey) string {
	return enrollmentKeyPrefix + key.String()
}

// loadEnrollment returns nil when the identity never enrolled. An unreadable
// blob is an error: treating it as "not enrolled" would skip the second factor.
func (s *TwoFactorService) loadEnrollment(ctx context.Context, kv store.ClientState, key domain.ScopedKey) (*domain.EnrollmentRecord, error) {
	k := enrollmentKey(key)
	sealed, err := kv.Get(ctx, k)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read enrollment: %w", err)
	}

	plain, err := s.Sealer.Open(sealed, []byte(k))
	if err != nil {
		return nil, fmt.Errorf("failed to open enrollment: %w", err)
	}

	var rec domain.EnrollmentRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode enrollment: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *TwoFactorService) saveEnrollment(ctx context.Context, kv store.ClientState, key domain.ScopedKey, rec domain.EnrollmentRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	plain, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode enrollment: %w", err)
	}

	k := enrollmentKey(key)
	sealed, err := s.Sealer.Seal(plain, []byte(k))
	if err != nil {
		return fmt.Errorf("failed to seal enrollment: %w", err)
	}

	if err := kv.Put(ctx, k, sealed, s.now()); err != nil {
		return fmt.Errorf("failed to store enrollment: %w", err)
	}
	return nil
}

func (s *TwoFactorService) loadLockout(ctx context.Context, tx store.Store, key domain.ScopedKey, now time.Time) (domain.LockoutState, error) {
	st, err := tx.Lockouts().Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.LockoutState{}, nil
	}
	if err != nil {
		return domain.LockoutState{}, fmt.Errorf("failed to read lockout: %w", err)
	}
	return s.policy().Current(st, now), nil
}

// Required reports whether key has an enabled enrollment, which decides
// whether a fresh login must present a second factor.
func (s *TwoFactorService) Required(ctx context.Context, key domain.ScopedKey) (bool, error) {
	rec, err := s.loadEnrollment(ctx, s.Store.ClientState(), key)
	if err != nil {
		return false, err
	}
	return rec.Active(), nil
}

// BeginSetup mints a new secret and backup codes for sess's identity. Nothing
// is persisted; a previous pending setup is replaced.
func (s *TwoFactorService) BeginSetup(ctx context.Context, sess domain.Session) (domain.SetupMaterial, error) {
	if !sess.FullyAuthenticated() {
		return domain.SetupMaterial{}, ErrSecondFactorRequired
	}

	secret, err := totpx.GenerateSecret()
	if err != nil {
		return domain.SetupMaterial{}, err
	}
	codes, err := totpx.GenerateBackupCodes(totpx.DefaultBackupCodeCount)
	if err != nil {
		return domain.SetupMaterial{}, err
	}

	uri := totpx.BuildProvisioningURI(secret, sess.Identity.AccountLabel(), s.Issuer)
	size := s.QRSize
	if size <= 0 {
		size = totpx.DefaultQRSize
	}
	qr, err := totpx.QRCodeDataURL(uri, size)
	if err != nil {
		return domain.SetupMaterial{}, err
	}

	ttl := s.SetupTTL
	if ttl <= 0 {
		ttl = defaultSetupTTL
	}

	s.mu.Lock()
	if s.pending == nil {
		s.pending = make(map[domain.ScopedKey]pendingSetup)
	}
	s.pending[sess.Scope()] = pendingSetup{
		secret:      secret,
		backupCodes: codes,
		expiresAt:   s.now().Add(ttl),
	}
	s.mu.Unlock()

	metrics.EnrollmentsTotal.WithLabelValues("setup_started").Inc()
	s.Logger.InfoContext(ctx, "two-factor setup started", "identity", sess.Key, "tenant", sess.Identity.Tenant)

	return domain.SetupMaterial{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCode:          qr,
		BackupCodes:     append([]string(nil), codes...),
	}, nil
}

func (s *TwoFactorService) takePending(key domain.ScopedKey, now time.Time) (pendingSetup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[key]
	if !ok {
		return pendingSetup{}, false
	}
	if !now.Before(p.expiresAt) {
		delete(s.pending, key)
		return pendingSetup{}, false
	}
	return p, true
}

// CancelSetup drops any pending setup of key.
func (s *TwoFactorService) CancelSetup(key domain.ScopedKey) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// PurgeExpiredSetups drops pending setups that ran out and returns how many.
func (s *TwoFactorService) PurgeExpiredSetups(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, p := range s.pending {
		if !now.Before(p.expiresAt) {
			delete(s.pending, k)
			n++
		}
	}
	return n
}

// ConfirmSetup checks token against the pending secret. Only a correct code
// turns the pending secret into an enrollment; anything else leaves state
// untouched.
func (s *TwoFactorService) ConfirmSetup(ctx context.Context, sess domain.Session, token string) (bool, error) {
	if !sess.FullyAuthenticated() {
		return false, ErrSecondFactorRequired
	}

	now := s.now()
	key := sess.Scope()
	p, ok := s.takePending(key, now)
	if !ok {
		return false, nil
	}
	step, ok := totpx.Match(token, p.secret, now, s.verifyOpts())
	if !ok {
		return false, nil
	}

	rec := domain.EnrollmentRecord{
		Enabled:      true,
		Verified:     true,
		Secret:       p.secret,
		BackupCodes:  p.backupCodes,
		LastUsedStep: step,
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.saveEnrollment(ctx, tx.ClientState(), key, rec); err != nil {
			return err
		}
		if err := tx.Lockouts().Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset lockout: %w", err)
		}
		return tx.Sessions().SetTwoFactor(ctx, sess.ID, true, true)
	})
	if err != nil {
		return false, err
	}

	s.CancelSetup(key)
	metrics.EnrollmentsTotal.WithLabelValues("enabled").Inc()
	s.Logger.InfoContext(ctx, "two-factor enabled", "identity", sess.Key, "tenant", sess.Identity.Tenant)
	return true, nil
}

// VerifySession checks a TOTP code for sess. An identity without an enabled
// enrollment passes. A locked identity fails without the code being looked at.
// A code from a time step that was already accepted counts as a failure.
func (s *TwoFactorService) VerifySession(ctx context.Context, sess domain.Session, token string) (bool, error) {
	return s.verify(ctx, sess, methodTOTP, func(rec *domain.EnrollmentRecord, now time.Time) bool {
		step, ok := totpx.Match(token, rec.Secret, now, s.verifyOpts())
		if !ok || step <= rec.LastUsedStep {
			return false
		}
		rec.LastUsedStep = step
		return true
	})
}

// VerifySessionWithBackupCode redeems one backup code for sess. The code is
// gone afterwards. Failures count toward the same lockout as TOTP failures.
func (s *TwoFactorService) VerifySessionWithBackupCode(ctx context.Context, sess domain.Session, code string) (bool, error) {
	return s.verify(ctx, sess, methodBackup, func(rec *domain.EnrollmentRecord, _ time.Time) bool {
		res := totpx.Redeem(code, rec.BackupCodes)
		if res.OK {
			rec.BackupCodes = res.Remaining
		}
		return res.OK
	})
}

func (s *TwoFactorService) verify(
	ctx context.Context,
	sess domain.Session,
	method string,
	check func(rec *domain.EnrollmentRecord, now time.Time) bool,
) (bool, error) {
	now := s.now()
	key := sess.Scope()
	outcome := metrics.OutcomeFailure
	var lockedNow bool

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := s.loadEnrollment(ctx, tx.ClientState(), key)
		if err != nil {
			return err
		}
		if !rec.Active() {
			outcome = metrics.OutcomeSuccess
			return tx.Sessions().SetTwoFactor(ctx, sess.ID, false, false)
		}

		state, err := s.loadLockout(ctx, tx, key, now)
		if err != nil {
			return err
		}
		if state.Locked(now) {
			outcome = metrics.OutcomeLocked
			return nil
		}

		if !check(rec, now) {
			state = s.policy().Fail(state, now)
			lockedNow = state.Locked(now)
			if err := tx.Lockouts().Put(ctx, key, state, now); err != nil {
				return fmt.Errorf("failed to record failed attempt: %w", err)
			}
			return nil
		}

		// check consumed a backup code or advanced the accepted step
		if err := s.saveEnrollment(ctx, tx.ClientState(), key, *rec); err != nil {
			return err
		}
		if err := tx.Lockouts().Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset lockout: %w", err)
		}
		outcome = metrics.OutcomeSuccess
		return tx.Sessions().SetTwoFactor(ctx, sess.ID, true, true)
	})
	if err != nil {
		metrics.TwoFactorVerificationsTotal.WithLabelValues(method, metrics.OutcomeError).Inc()
		return false, err
	}

	metrics.TwoFactorVerificationsTotal.WithLabelValues(method, outcome).Inc()
	if lockedNow {
		metrics.LockoutsTotal.Inc()
		s.Logger.WarnContext(ctx, "two-factor lockout started", "identity", sess.Key, "tenant", sess.Identity.Tenant, "method", method)
	}
	return outcome == metrics.OutcomeSuccess, nil
}

// Disable removes the enrollment of sess's identity and any pending setup.
// Open sessions of the identity stop requiring a second factor. Disabling an
// identity that never enrolled is a no-op.
func (s *TwoFactorService) Disable(ctx context.Context, sess domain.Session) error {
	if !sess.FullyAuthenticated() {
		return ErrSecondFactorRequired
	}

	key := sess.Scope()
	s.CancelSetup(key)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ClientState().Delete(ctx, enrollmentKey(key)); err != nil {
			return fmt.Errorf("failed to delete enrollment: %w", err)
		}
		if err := tx.Lockouts().Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset lockout: %w", err)
		}
		return tx.Sessions().ClearTwoFactorForIdentity(ctx, key)
	})
	if err != nil {
		return err
	}

	metrics.EnrollmentsTotal.WithLabelValues("disabled").Inc()
	s.Logger.InfoContext(ctx, "two-factor disabled", "identity", sess.Key, "tenant", sess.Identity.Tenant)
	return nil
}

// Status reports enrollment and lockout state as of now. Lock expiry is
// evaluated here rather than by any timer.
func (s *TwoFactorService) Status(ctx context.Context, sess domain.Session) (TwoFactorStatus, error) {
	now := s.now()
	key := sess.Scope()

	rec, err := s.loadEnrollment(ctx, s.Store.ClientState(), key)
	if err != nil {
		return TwoFactorStatus{}, err
	}
	state, err := s.loadLockout(ctx, s.Store, key, now)
	if err != nil {
		return TwoFactorStatus{}, err
	}

	s.mu.Lock()
	p, pending := s.pending[key]
	s.mu.Unlock()

	st := TwoFactorStatus{
		Requires2FA:     sess.Requires2FA,
		SessionVerified: sess.MFAVerified,
		SetupPending:    pending && now.Before(p.expiresAt),
		FailedAttempts:  state.FailedAttempts,
		Locked:          state.Locked(now),
	}
	if rec != nil {
		st.Enabled = rec.Enabled
		st.Verified = rec.Verified
		st.BackupCodesRemaining = len(rec.BackupCodes)
	}
	if st.Locked {
		st.LockedUntil = state.LockedUntil
		// rounded up so the countdown never shows 0 while still locked
		st.RemainingSeconds = int64((domain.Remaining(now, state.LockedUntil) + time.Second - 1) / time.Second)
	}
	return st, nil
}
