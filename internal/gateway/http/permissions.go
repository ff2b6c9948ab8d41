package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/slogx"
)

// PermissionsHandler answers page and database access questions for the
// caller. A failed permission load is never an error to the client: it
// simply denies.
type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

func (h *PermissionsHandler) writeRecord(w http.ResponseWriter, r *http.Request, rec *domain.PermissionRecord, err error) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	if err != nil {
		log.Warn("permissions unavailable, denying", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, PermissionsResponse{
		Loaded:      rec != nil,
		IsAdmin:     h.PermissionService.ResolverFor(sess, rec).IsAdmin(),
		Permissions: rec,
	})
}

// HandleGet handles GET /v1/permissions
//
//	@Summary		Caller's permission record
//	@Description	Returns the cached permission record, loading it from the backend when absent or older than the cache TTL.
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	http.PermissionsResponse	"loaded is false when the backend could not be reached"
//	@Failure		401	{object}	httpx.ErrorBody				"Invalid or missing session"
//	@Failure		403	{object}	httpx.ErrorBody				"Second factor not yet verified"
//	@Router			/v1/permissions [get].
func (h *PermissionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	rec, err := h.PermissionService.Load(r.Context(), sess)
	h.writeRecord(w, r, rec, err)
}

// HandleRefresh handles POST /v1/permissions/refresh
//
//	@Summary		Reload the caller's permission record
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	http.PermissionsResponse	"loaded is false when the backend could not be reached"
//	@Failure		401	{object}	httpx.ErrorBody				"Invalid or missing session"
//	@Failure		403	{object}	httpx.ErrorBody				"Second factor not yet verified"
//	@Router			/v1/permissions/refresh [post].
func (h *PermissionsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	rec, err := h.PermissionService.Refresh(r.Context(), sess)
	h.writeRecord(w, r, rec, err)
}

// HandlePage handles GET /v1/permissions/pages
//
//	@Summary		Protected page gate
//	@Description	Decides whether the caller may open a view. A denied answer says whether an access request was already sent.
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			path	query		string					true	"Page path, e.g. /reports"
//	@Success		200		{object}	service.PageDecision	"Decision"
//	@Failure		400		{object}	httpx.ErrorBody			"Missing path"
//	@Failure		401		{object}	httpx.ErrorBody			"Invalid or missing session"
//	@Failure		403		{object}	httpx.ErrorBody			"Second factor not yet verified"
//	@Router			/v1/permissions/pages [get].
func (h *PermissionsHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "path is required")
		return
	}

	decision, err := h.PermissionService.DecidePage(ctx, sess, path)
	if err != nil {
		log.Warn("permissions unavailable, denying", "path", decision.Path, "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, decision)
}

// HandleDatabases handles GET /v1/permissions/databases
//
//	@Summary		Databases visible to the caller
//	@Description	Lists the backend's databases the caller holds at least one right on.
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	http.DatabasesResponse	"Filtered catalogue, empty when nothing could be loaded"
//	@Failure		401	{object}	httpx.ErrorBody			"Invalid or missing session"
//	@Failure		403	{object}	httpx.ErrorBody			"Second factor not yet verified"
//	@Router			/v1/permissions/databases [get].
func (h *PermissionsHandler) HandleDatabases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	dbs, err := h.PermissionService.ListDatabases(ctx, sess)
	if err != nil {
		log.Warn("database list unavailable", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, DatabasesResponse{Databases: dbs})
}

// HandleDatabase handles GET /v1/permissions/databases/{name}
//
//	@Summary		Rights on one database
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			name	path		string							true	"Database name"
//	@Success		200		{object}	http.DatabasePermissionResponse	"Rights, all false when unknown"
//	@Failure		401		{object}	httpx.ErrorBody					"Invalid or missing session"
//	@Failure		403		{object}	httpx.ErrorBody					"Second factor not yet verified"
//	@Router			/v1/permissions/databases/{name} [get].
func (h *PermissionsHandler) HandleDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	sess, _ := sessionFromContext(ctx)

	name := r.PathValue("name")
	resolver, err := h.PermissionService.Resolver(ctx, sess)
	if err != nil {
		log.Warn("permissions unavailable, denying", "database", name, "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, DatabasePermissionResponse{
		Name:               name,
		DatabasePermission: resolver.DatabasePermissions(name),
	})
}

// HandleAccessRequest handles POST /v1/access-requests
//
//	@Summary		Request access to a page
//	@Description	Forwards an access request to the administrators through the backend. Once accepted the page gate
//	@Description	reports request_submitted for that page.
//	@Tags			Permissions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.AccessRequest		true	"Request"
//	@Success		202		{object}	http.AccessRequestResponse	"Submitted"
//	@Failure		400		{object}	httpx.ErrorBody				"Missing requested_page"
//	@Failure		401		{object}	httpx.ErrorBody				"Invalid or missing session"
//	@Failure		403		{object}	httpx.ErrorBody				"Second factor not yet verified"
//	@Failure		502		{object}	httpx.ErrorBody				"Backend refused or unreachable, the request can be retried"
//	@Router			/v1/access-requests [post].
func (h *PermissionsHandler) HandleAccessRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := sessionFromContext(ctx)

	var req domain.AccessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	err := h.PermissionService.RequestAccess(ctx, sess, req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "requested_page is required")
		return
	case err != nil:
		httpx.WriteError(w, http.StatusBadGateway, "backend_unavailable", "access request could not be submitted, try again")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, AccessRequestResponse{Submitted: true})
}
