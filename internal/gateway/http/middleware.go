package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/pkg/cryptox"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/slogx"
)

// SessionCookie carries the session token for browsers that do not keep it
// in script-visible storage.
const SessionCookie = "console_session"

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// SessionMiddleware resolves the session token to a live session and puts it
// on the request context. The session id doubles as the rate-limit subject.
func SessionMiddleware(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token := sessionToken(r)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
				return
			}

			sess, err := auth.Authenticate(ctx, token)
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				httpx.WriteError(w, http.StatusUnauthorized, "session_expired", "session has expired, log in again")
				return
			case errors.Is(err, service.ErrSessionNotFound):
				log.Debug("session rejected", "token", cryptox.FingerprintToken(token), "err", err)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid session token")
				return
			case err != nil:
				log.Error("failed to authenticate session", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
				return
			}

			ctx = withSession(ctx, sess)
			ctx = httpx.WithSubject(ctx, sess.ID)
			ctx = slogx.With(ctx, "session", sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSecondFactor rejects sessions that still owe their second factor.
// It must run after SessionMiddleware.
func RequireSecondFactor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		if !sess.FullyAuthenticated() {
			httpx.WriteError(w, http.StatusForbidden, "mfa_required", "two-factor verification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
