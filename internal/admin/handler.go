// Package admin serves operator routes. Callers are expected to mount it
// behind the admin token middleware.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/lookup"
	dErrors "dladmin/pkg/domain-errors"
	audit "dladmin/pkg/platform/audit"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// LookupInvalidator drops cached reference data.
type LookupInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AuditReader queries recorded audit events.
type AuditReader interface {
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	lookups LookupInvalidator
	audit   AuditReader
	logger  *slog.Logger
}

func New(lookups LookupInvalidator, auditReader AuditReader, logger *slog.Logger) *Handler {
	return &Handler{lookups: lookups, audit: auditReader, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/lookups/invalidate", h.HandleInvalidateLookups)
	r.Get("/admin/audit/recent", h.HandleRecentAudit)
	r.Get("/admin/audit/subjects/{subject}", h.HandleSubjectAudit)
}

func (h *Handler) HandleInvalidateLookups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.lookups.Invalidate(ctx); err != nil {
		h.fail(ctx, w, "invalidate lookups", err)
		return
	}
	h.logger.InfoContext(ctx, "lookup cache invalidated", "request_id", requestcontext.RequestID(ctx))
	httputil.WriteJSON(w, http.StatusOK, InvalidateResponse{
		Invalidated:   []string{lookup.KeyLocations, lookup.KeyLookups},
		InvalidatedAt: requestcontext.Now(ctx),
	})
}

func (h *Handler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAuditLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and "+strconv.Itoa(maxAuditLimit)))
			return
		}
		limit = n
	}
	events, err := h.audit.ListRecent(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "list recent audit events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eventsResponse(events))
}

func (h *Handler) HandleSubjectAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.audit.ListBySubject(ctx, chi.URLParam(r, "subject"))
	if err != nil {
		h.fail(ctx, w, "list subject audit events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eventsResponse(events))
}

func eventsResponse(events []audit.Event) AuditEventsResponse {
	if events == nil {
		events = []audit.Event{}
	}
	return AuditEventsResponse{Events: events, Total: len(events)}
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, op+" failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
