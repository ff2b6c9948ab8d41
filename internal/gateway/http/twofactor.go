package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/ifrsconsole/console/pkg/totpx"
)

// maxBackupCodeLength bounds what is compared against stored codes.
const maxBackupCodeLength = 32

// TwoFactorHandler handles the TOTP enrollment and verification endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

func decodeCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return "", false
	}
	return strings.TrimSpace(req.Code), true
}

// writeVerifyFailure reports a rejected code. While the identity is locked
// the answer is 423 with the time left.
func (h *TwoFactorHandler) writeVerifyFailure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	status, err := h.TwoFactorService.Status(ctx, sess)
	if err != nil {
		log.Error("failed to read 2fa status", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	if status.Locked && status.LockedUntil != nil {
		httpx.WriteJSON(w, http.StatusLocked, LockedResponse{
			Error:            "locked",
			ErrorDescription: "too many failed attempts, try again later",
			RemainingSeconds: status.RemainingSeconds,
			LockedUntil:      *status.LockedUntil,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{
		Verified:       false,
		FailedAttempts: status.FailedAttempts,
	})
}

// HandleStatus handles GET /v1/2fa/status
//
//	@Summary		Two-factor status
//	@Description	Reports the enrollment, the session's verification state and any lockout.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	service.TwoFactorStatus	"Status"
//	@Failure		401	{object}	httpx.ErrorBody			"Invalid or missing session"
//	@Failure		500	{object}	httpx.ErrorBody			"Internal server error"
//	@Router			/v1/2fa/status [get].
func (h *TwoFactorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	status, err := h.TwoFactorService.Status(ctx, sess)
	if err != nil {
		log.Error("failed to read 2fa status", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, status)
}

// HandleSetup handles POST /v1/2fa/setup
//
//	@Summary		Begin TOTP setup
//	@Description	Generates a secret, provisioning URI, QR code and backup codes. Nothing is stored until the
//	@Description	setup is confirmed through /v1/2fa/enable. The material expires after a few minutes.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.SetupMaterial	"Setup material"
//	@Failure		401	{object}	httpx.ErrorBody			"Invalid or missing session"
//	@Failure		403	{object}	httpx.ErrorBody			"Second factor not yet verified"
//	@Failure		500	{object}	httpx.ErrorBody			"Internal server error"
//	@Router			/v1/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	material, err := h.TwoFactorService.BeginSetup(ctx, sess)
	if errors.Is(err, service.ErrSecondFactorRequired) {
		httpx.WriteError(w, http.StatusForbidden, "mfa_required", "two-factor verification required")
		return
	}
	if err != nil {
		log.Error("failed to begin 2fa setup", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, material)
}

// HandleCancelSetup handles DELETE /v1/2fa/setup
//
//	@Summary		Abandon TOTP setup
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Success		204	"Pending setup discarded"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing session"
//	@Router			/v1/2fa/setup [delete].
func (h *TwoFactorHandler) HandleCancelSetup(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	h.TwoFactorService.CancelSetup(sess.Scope())
	w.WriteHeader(http.StatusNoContent)
}

// HandleEnable handles POST /v1/2fa/enable
//
//	@Summary		Confirm TOTP setup
//	@Description	Checks a code against the pending secret and, when it matches, stores the enrollment.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		http.CodeRequest	true	"TOTP code"
//	@Success		200		{object}	http.VerifyResponse	"verified is false when the code or the pending setup is not valid"
//	@Failure		400		{object}	httpx.ErrorBody		"Malformed code"
//	@Failure		401		{object}	httpx.ErrorBody		"Invalid or missing session"
//	@Failure		403		{object}	httpx.ErrorBody		"Second factor not yet verified"
//	@Failure		500		{object}	httpx.ErrorBody		"Internal server error"
//	@Router			/v1/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	code, ok := decodeCode(w, r)
	if !ok {
		return
	}
	if !totpx.WellFormed(code) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code must be 6 digits")
		return
	}

	verified, err := h.TwoFactorService.ConfirmSetup(ctx, sess, code)
	if errors.Is(err, service.ErrSecondFactorRequired) {
		httpx.WriteError(w, http.StatusForbidden, "mfa_required", "two-factor verification required")
		return
	}
	if err != nil {
		log.Error("failed to confirm 2fa setup", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Verified: verified})
}

// HandleVerify handles POST /v1/2fa/verify
//
//	@Summary		Verify the session with a TOTP code
//	@Description	Completes the second factor for the session. Five failures lock verification for 15 minutes.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		http.CodeRequest	true	"TOTP code"
//	@Success		200		{object}	http.VerifyResponse	"Outcome"
//	@Failure		400		{object}	httpx.ErrorBody		"Malformed code"
//	@Failure		401		{object}	httpx.ErrorBody		"Invalid or missing session"
//	@Failure		423		{object}	http.LockedResponse	"Verification locked"
//	@Failure		500		{object}	httpx.ErrorBody		"Internal server error"
//	@Router			/v1/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	code, ok := decodeCode(w, r)
	if !ok {
		return
	}
	if !totpx.WellFormed(code) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code must be 6 digits")
		return
	}

	verified, err := h.TwoFactorService.VerifySession(ctx, sess, code)
	if err != nil {
		log.Error("failed to verify 2fa code", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}
	if !verified {
		h.writeVerifyFailure(w, r)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Verified: true})
}

// HandleVerifyBackupCode handles POST /v1/2fa/backup-codes/verify
//
//	@Summary		Verify the session with a backup code
//	@Description	Consumes one backup code. Failures count towards the same lockout as TOTP codes.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		http.CodeRequest	true	"Backup code"
//	@Success		200		{object}	http.VerifyResponse	"Outcome"
//	@Failure		400		{object}	httpx.ErrorBody		"Malformed code"
//	@Failure		401		{object}	httpx.ErrorBody		"Invalid or missing session"
//	@Failure		423		{object}	http.LockedResponse	"Verification locked"
//	@Failure		500		{object}	httpx.ErrorBody		"Internal server error"
//	@Router			/v1/2fa/backup-codes/verify [post].
func (h *TwoFactorHandler) HandleVerifyBackupCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	code, ok := decodeCode(w, r)
	if !ok {
		return
	}
	if code == "" || len(code) > maxBackupCodeLength {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	verified, err := h.TwoFactorService.VerifySessionWithBackupCode(ctx, sess, code)
	if err != nil {
		log.Error("failed to verify backup code", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}
	if !verified {
		h.writeVerifyFailure(w, r)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Verified: true})
}

// HandleDisable handles DELETE /v1/2fa
//
//	@Summary		Disable two-factor authentication
//	@Description	Removes the enrollment and lockout for the caller. Other sessions of the same identity stop owing a second factor.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Success		204	"Disabled"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing session"
//	@Failure		403	{object}	httpx.ErrorBody	"Second factor not yet verified"
//	@Failure		500	{object}	httpx.ErrorBody	"Internal server error"
//	@Router			/v1/2fa [delete].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	err := h.TwoFactorService.Disable(ctx, sess)
	if errors.Is(err, service.ErrSecondFactorRequired) {
		httpx.WriteError(w, http.StatusForbidden, "mfa_required", "two-factor verification required")
		return
	}
	if err != nil {
		log.Error("failed to disable 2fa", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
