package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/ifrsconsole/console/internal/gateway/metrics"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/idx"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPermissionCacheTTL = 5 * time.Minute
	defaultRequestType        = "page_access"

	PageGranted = "granted"
	PageDenied  = "denied"
)

// PageDecision is the answer for one protected view.
type PageDecision struct {
	Path             string `json:"path"`
	State            string `json:"state"`
	RequestSubmitted bool   `json:"request_submitted"`
}

type permissionEntry struct {
	gen      uint64
	record   *domain.PermissionRecord
	err      error
	loadedAt time.Time
	valid    bool

	// settled is closed once generation gen has published or been
	// superseded, and is nil after the current generation published.
	settled chan struct{}
}

func (e *permissionEntry) settle() {
	if e.settled != nil {
		close(e.settled)
		e.settled = nil
	}
}

// PermissionService loads and caches permission records per identity and
// tenant. Every load takes a fresh generation number and may only publish its
// result while that generation is still the entry's current one, so a slow
// response never overwrites a newer one or resurrects a forgotten entry. A
// load that lost that race waits for the newer generation and hands back its
// result instead. Concurrent cache misses of one key share a single fetch.
type PermissionService struct {
	Backend       Backend
	Store         store.Store
	AdminUsername string
	CacheTTL      time.Duration
	Logger        *slog.Logger
	Now           func() time.Time

	mu      sync.Mutex
	gen     uint64
	entries map[domain.ScopedKey]*permissionEntry
	group   singleflight.Group
}

func (s *PermissionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PermissionService) ttl() time.Duration {
	if s.CacheTTL <= 0 {
		return defaultPermissionCacheTTL
	}
	return s.CacheTTL
}

// Load returns the cached record for sess or fetches it. A failed fetch yields
// a nil record, which every check treats as deny.
func (s *PermissionService) Load(ctx context.Context, sess domain.Session) (*domain.PermissionRecord, error) {
	k := sess.Scope()

	s.mu.Lock()
	if e, ok := s.entries[k]; ok && e.valid && s.now().Sub(e.loadedAt) < s.ttl() {
		rec := e.record
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(k.String(), func() (any, error) {
		return s.load(ctx, sess)
	})
	rec, _ := v.(*domain.PermissionRecord)
	return rec, err
}

// Refresh bypasses the cache.
func (s *PermissionService) Refresh(ctx context.Context, sess domain.Session) (*domain.PermissionRecord, error) {
	return s.load(ctx, sess)
}

// Forget drops the cached record of key, for sign-out. Loads still in flight
// for it end with ErrStaleLoad.
func (s *PermissionService) Forget(key domain.ScopedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		delete(s.entries, key)
		e.settle()
	}
}

func (s *PermissionService) load(ctx context.Context, sess domain.Session) (*domain.PermissionRecord, error) {
	k := sess.Scope()

	s.mu.Lock()
	if s.entries == nil {
		s.entries = make(map[domain.ScopedKey]*permissionEntry)
	}
	e, ok := s.entries[k]
	if !ok {
		e = &permissionEntry{}
		s.entries[k] = e
	}
	s.gen++
	gen := s.gen
	e.settle()
	e.gen = gen
	e.settled = make(chan struct{})
	s.mu.Unlock()

	rec, err := s.fetch(ctx, sess)

	s.mu.Lock()
	cur, ok := s.entries[k]
	if !ok || cur.gen != gen {
		s.mu.Unlock()
		metrics.PermissionLoadsTotal.WithLabelValues("stale").Inc()
		s.Logger.DebugContext(ctx, "discarding stale permission load", "identity", sess.Key, "tenant", k.Tenant)
		return s.awaitCurrent(ctx, k)
	}

	if err != nil {
		cur.valid = false
		cur.record = nil
		cur.err = err
		cur.settle()
		s.mu.Unlock()

		metrics.PermissionLoadsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.Logger.ErrorContext(ctx, "failed to load permissions", "identity", sess.Key, "tenant", k.Tenant, "error", err)
		return nil, err
	}

	cur.record = rec
	cur.err = nil
	cur.loadedAt = s.now()
	cur.valid = true
	cur.settle()
	s.mu.Unlock()

	metrics.PermissionLoadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return rec, nil
}

// awaitCurrent blocks until the newest generation of k has published and
// returns its outcome. A forgotten entry yields ErrStaleLoad.
func (s *PermissionService) awaitCurrent(ctx context.Context, k domain.ScopedKey) (*domain.PermissionRecord, error) {
	for {
		s.mu.Lock()
		cur, ok := s.entries[k]
		if !ok {
			s.mu.Unlock()
			return nil, ErrStaleLoad
		}
		wait := cur.settled
		if wait == nil {
			rec, err, valid := cur.record, cur.err, cur.valid
			s.mu.Unlock()
			switch {
			case valid:
				return rec, nil
			case err != nil:
				return nil, err
			default:
				return nil, ErrStaleLoad
			}
		}
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// fetch asks the backend by user id and, when the key is not a numeric id,
// falls back to the by-username lookup.
func (s *PermissionService) fetch(ctx context.Context, sess domain.Session) (*domain.PermissionRecord, error) {
	tenant := sess.Identity.Tenant

	up, err := s.Backend.UserPermissions(ctx, sess.BackendToken, sess.Key.String(), tenant)
	if err != nil && !sess.Key.Numeric() && sess.Identity.Username != "" {
		s.Logger.DebugContext(ctx, "permission lookup by id failed, trying username", "identity", sess.Key, "error", err)
		up, err = s.Backend.FindUserPermissions(ctx, sess.BackendToken, tenant, sess.Identity.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	return recordFromSDK(up), nil
}

func recordFromSDK(up *consolesdk.UserPermissions) *domain.PermissionRecord {
	rec := &domain.PermissionRecord{
		PagePermissions:     make(map[string]bool, len(up.PagePermissions)),
		DatabasePermissions: make(map[string]domain.DatabasePermission, len(up.DatabasePermissions)),
		TemporaryAccess:     make(map[string]domain.TemporaryGrant, len(up.TemporaryAccess)),
	}
	for path, ok := range up.PagePermissions {
		rec.PagePermissions[domain.NormalizePath(path)] = ok
	}
	for name, r := range up.DatabasePermissions {
		rec.DatabasePermissions[name] = domain.DatabasePermission{Read: r.Read, Write: r.Write, Execute: r.Execute}
	}
	for path, g := range up.TemporaryAccess {
		rec.TemporaryAccess[domain.NormalizePath(path)] = domain.TemporaryGrant{GrantedUntil: g.GrantedUntil.Time}
	}
	return rec
}

// Resolver returns a resolver for sess as of now. It is always usable: when
// loading failed it carries no record and denies, and the error is returned
// alongside for the caller to report.
func (s *PermissionService) Resolver(ctx context.Context, sess domain.Session) (Resolver, error) {
	rec, err := s.Load(ctx, sess)
	return s.ResolverFor(sess, rec), err
}

// ResolverFor evaluates an already loaded record for sess.
func (s *PermissionService) ResolverFor(sess domain.Session, rec *domain.PermissionRecord) Resolver {
	return NewResolver(rec, sess.Identity.Username, s.AdminUsername, s.now())
}

// DecidePage runs the protected-page gate for path.
func (s *PermissionService) DecidePage(ctx context.Context, sess domain.Session, path string) (PageDecision, error) {
	path = domain.NormalizePath(path)
	r, loadErr := s.Resolver(ctx, sess)

	d := PageDecision{Path: path, State: PageDenied}
	if r.CanView(path) {
		d.State = PageGranted
		metrics.PageDecisionsTotal.WithLabelValues(PageGranted).Inc()
		return d, nil
	}
	metrics.PageDecisionsTotal.WithLabelValues(PageDenied).Inc()

	submitted, err := s.Store.AccessRequests().Submitted(ctx, sess.Key, sess.Identity.Tenant, path)
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to read access request flag", "identity", sess.Key, "error", err)
	}
	d.RequestSubmitted = submitted
	return d, loadErr
}

// ListDatabases returns the backend catalogue filtered down to what sess may
// touch. Without a permission record the backend is not even asked.
func (s *PermissionService) ListDatabases(ctx context.Context, sess domain.Session) ([]domain.Database, error) {
	r, err := s.Resolver(ctx, sess)
	if r.Record() == nil {
		return []domain.Database{}, err
	}

	raw, err := s.Backend.Databases(ctx, sess.BackendToken, sess.Identity.Tenant)
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to list databases", "identity", sess.Key, "error", err)
		return []domain.Database{}, fmt.Errorf("failed to list databases: %w", err)
	}

	list := make([]domain.Database, 0, len(raw))
	for _, item := range raw {
		var db domain.Database
		if err := json.Unmarshal(item, &db); err != nil {
			s.Logger.WarnContext(ctx, "skipping unreadable database entry", "error", err)
			continue
		}
		list = append(list, db)
	}
	return r.FilterDatabases(list), nil
}

// RequestAccess files an access request with the administrators and, once
// the backend accepted it, remembers it so the page can show it as sent.
// A backend failure is returned so the caller can offer a retry.
func (s *PermissionService) RequestAccess(ctx context.Context, sess domain.Session, req domain.AccessRequest) error {
	req.RequestedPage = strings.TrimSpace(req.RequestedPage)
	if req.RequestedPage == "" {
		return ErrInvalidRequest
	}
	req.RequestedPage = domain.NormalizePath(req.RequestedPage)
	if req.RequestType == "" {
		req.RequestType = defaultRequestType
	}

	err := s.Backend.SubmitAccessRequest(ctx, sess.BackendToken, consolesdk.AccessRequest{
		Username:      sess.Identity.Username,
		CompanyName:   sess.Identity.Tenant,
		RequestedPage: req.RequestedPage,
		PageName:      req.PageName,
		Reason:        req.Reason,
		RequestType:   req.RequestType,
	})
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to submit access request", "identity", sess.Key, "page", req.RequestedPage, "error", err)
		return fmt.Errorf("failed to submit access request: %w", err)
	}

	rec := store.AccessRequestRecord{
		ID:        idx.New().String(),
		Key:       sess.Key,
		Tenant:    sess.Identity.Tenant,
		Request:   req,
		CreatedAt: s.now(),
	}
	if err := s.Store.AccessRequests().Create(ctx, rec); err != nil {
		s.Logger.WarnContext(ctx, "failed to remember access request", "identity", sess.Key, "error", err)
	}

	s.Logger.InfoContext(ctx, "access request submitted", "identity", sess.Key, "page", req.RequestedPage)
	return nil
}
