package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/slogx"
)

// SessionHandler handles login, logout and session inspection.
type SessionHandler struct {
	AuthService  *service.AuthService
	TwoFactor    *service.TwoFactorService
	SecureCookie bool
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

// HandleLogin handles POST /v1/session/login
//
//	@Summary		Log in
//	@Description	Checks the credentials with the IFRS backend and opens a gateway session.
//	@Description	When the account has two-factor authentication enabled the session must be verified
//	@Description	through /v1/2fa/verify before it can reach permission endpoints.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.LoginRequest	true	"Credentials"
//	@Success		200		{object}	http.LoginResponse		"Session token and session details"
//	@Failure		400		{object}	httpx.ErrorBody			"Missing fields"
//	@Failure		401		{object}	httpx.ErrorBody			"Invalid credentials"
//	@Failure		429		{object}	httpx.ErrorBody			"Rate limit exceeded"
//	@Failure		502		{object}	httpx.ErrorBody			"Backend unavailable"
//	@Router			/v1/session/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req service.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	sess, token, err := h.AuthService.Login(ctx, req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid company, username or password")
		return
	case err != nil:
		log.Error("login failed", "company", req.CompanyName, "username", req.Username, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "backend_unavailable", "unable to reach the IFRS backend")
		return
	}

	h.setCookie(w, token, sess.ExpiresAt)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:   token,
		Session: sessionInfo(sess),
	})
}

// HandleLogout handles POST /v1/session/logout
//
//	@Summary		Log out
//	@Description	Ends the gateway session and the backend session. Cached permissions and any pending 2FA setup are dropped.
//	@Tags			Session
//	@Security		BearerAuth
//	@Success		204	"Logged out"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing session"
//	@Failure		500	{object}	httpx.ErrorBody	"Internal server error"
//	@Router			/v1/session/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, _ := sessionFromContext(ctx)
	if err := h.AuthService.Logout(ctx, sess); err != nil {
		log.Error("failed to log out", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	h.setCookie(w, "", time.Time{})
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /v1/session
//
//	@Summary		Describe the current session
//	@Description	Returns the session's identity and second-factor state. With probe=true the backend is asked
//	@Description	whether its token is still accepted; a rejected token ends the gateway session.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Param			probe	query		bool				false	"Check the backend token"
//	@Success		200		{object}	http.SessionInfo	"Session details"
//	@Failure		401		{object}	httpx.ErrorBody		"Invalid, expired or backend-rejected session"
//	@Router			/v1/session [get].
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, _ := sessionFromContext(ctx)
	info := sessionInfo(sess)

	if r.URL.Query().Get("probe") == "true" {
		_, err := h.AuthService.Probe(ctx, sess)
		switch {
		case consolesdk.IsStatus(err, http.StatusUnauthorized):
			log.Info("backend rejected session token, ending session")
			if err := h.AuthService.Logout(ctx, sess); err != nil {
				log.Warn("failed to end session", "err", err)
			}
			h.setCookie(w, "", time.Time{})
			httpx.WriteError(w, http.StatusUnauthorized, "session_expired", "backend session has ended, log in again")
			return
		case err != nil:
			log.Warn("backend probe failed", "err", err)
		}
		ok := err == nil
		info.BackendOK = &ok
	}

	httpx.WriteJSON(w, http.StatusOK, info)
}
