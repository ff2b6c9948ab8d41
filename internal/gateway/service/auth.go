package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/metrics"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/cryptox"
	"github.com/ifrsconsole/console/pkg/idx"
	"github.com/ifrsconsole/console/pkg/jwtx"
)

const defaultSessionTTL = 12 * time.Hour

// LoginRequest is what the login form submits.
type LoginRequest struct {
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (r LoginRequest) validate() error {
	if strings.TrimSpace(r.CompanyName) == "" || strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return fmt.Errorf("%w: company_name, username and password are required", ErrInvalidRequest)
	}
	return nil
}

// AuthService logs users in against the backend and keeps the gateway
// session that the second factor and permission checks hang off.
type AuthService struct {
	Backend     Backend
	Store       store.Store
	Sealer      *cryptox.Sealer
	Tokens      *jwtx.HS256
	TwoFactor   *TwoFactorService
	Permissions *PermissionService
	SessionTTL  time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// The backend token is stored sealed, bound to the session id.
func (s *AuthService) sealBackendToken(sessionID, token string) (string, error) {
	sealed, err := s.Sealer.Seal([]byte(token), []byte(sessionID))
	if err != nil {
		return "", fmt.Errorf("failed to seal backend token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *AuthService) openBackendToken(sessionID, stored string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode backend token: %w", err)
	}
	plain, err := s.Sealer.Open(sealed, []byte(sessionID))
	if err != nil {
		return "", fmt.Errorf("failed to open backend token: %w", err)
	}
	return string(plain), nil
}

// Login checks credentials with the backend and opens a gateway session. The
// session requires a second factor when the identity has an enabled
// enrollment. It returns the session and its signed token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (domain.Session, string, error) {
	if err := req.validate(); err != nil {
		return domain.Session{}, "", err
	}

	resp, err := s.Backend.Login(ctx, consolesdk.LoginRequest{
		CompanyName: strings.TrimSpace(req.CompanyName),
		Username:    strings.TrimSpace(req.Username),
		Password:    req.Password,
	})
	if err != nil {
		var apiErr *consolesdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == consolesdk.ErrorCodeInvalidCredentials {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			s.Logger.InfoContext(ctx, "login rejected", "company", req.CompanyName, "username", req.Username)
			return domain.Session{}, "", ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return domain.Session{}, "", fmt.Errorf("backend login failed: %w", err)
	}

	identity := domain.Identity{
		UserID:   resp.UserID.String(),
		Username: firstNonEmpty(resp.Username, strings.TrimSpace(req.Username)),
		Email:    resp.Email,
		Tenant:   firstNonEmpty(resp.CompanyName, strings.TrimSpace(req.CompanyName)),
	}
	key, err := domain.ResolveIdentityKey(identity)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return domain.Session{}, "", err
	}

	requires, err := s.TwoFactor.Required(ctx, domain.Scope(identity.Tenant, key))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return domain.Session{}, "", fmt.Errorf("failed to read enrollment: %w", err)
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := s.now()
	sess := domain.Session{
		ID:           idx.NewAt(now).String(),
		Identity:     identity,
		Key:          key,
		BackendToken: resp.Token,
		Requires2FA:  requires,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	row := sess
	row.BackendToken, err = s.sealBackendToken(sess.ID, resp.Token)
	if err != nil {
		return domain.Session{}, "", err
	}
	if err := s.Store.Sessions().Create(ctx, row); err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to create session: %w", err)
	}

	claims := jwtx.NewSessionClaims(key.String(), sess.ID, identity.Tenant, identity.Username, s.Tokens.Issuer(), ttl, now)
	token, err := s.Tokens.Sign(claims)
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.Logger.InfoContext(ctx, "login succeeded",
		"identity", key,
		"tenant", identity.Tenant,
		"session", sess.ID,
		"requires_2fa", requires,
	)
	return sess, token, nil
}

// Authenticate resolves a session token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.Tokens.Verify(token)
	if errors.Is(err, jwtx.ErrExpired) {
		return domain.Session{}, ErrSessionExpired
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	sess, err := s.Store.Sessions().Get(ctx, claims.SID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, ErrSessionExpired
	}

	sess.BackendToken, err = s.openBackendToken(sess.ID, sess.BackendToken)
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Logout ends the session here and at the backend. A backend failure is only
// logged: the local session is gone either way.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	if err := s.Backend.Logout(ctx, sess.BackendToken); err != nil {
		s.Logger.WarnContext(ctx, "backend logout failed", "session", sess.ID, "error", err)
	}

	if err := s.Store.Sessions().Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.Permissions.Forget(sess.Scope())
	s.TwoFactor.CancelSetup(sess.Scope())

	s.Logger.InfoContext(ctx, "logged out", "identity", sess.Key, "session", sess.ID)
	return nil
}

// Probe asks the backend whether the session's token is still good.
func (s *AuthService) Probe(ctx context.Context, sess domain.Session) (*consolesdk.UserInfo, error) {
	return s.Backend.UserInfo(ctx, sess.BackendToken)
}

// AuthHeaders returns the headers for calling the backend as sess's user.
func (s *AuthService) AuthHeaders(sess domain.Session) map[string]string {
	return map[string]string{"Authorization": "Bearer " + sess.BackendToken}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
