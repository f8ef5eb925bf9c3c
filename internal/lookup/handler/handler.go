package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/lookup"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

// Service serves reference data.
type Service interface {
	Locations(ctx context.Context, activeOnly bool) ([]lookup.Location, error)
	Lookups(ctx context.Context) (lookup.Lookups, error)
	Lookup(ctx context.Context, name string) ([]lookup.Item, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/lookups", h.HandleLookups)
	r.Get("/lookups/{name}", h.HandleLookup)
	r.Get("/locations", h.HandleLocations)
}

func (h *Handler) HandleLookups(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.Lookups(r.Context())
	h.respond(w, r, "list lookups", all, err)
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	items, err := h.service.Lookup(r.Context(), name)
	h.respond(w, r, "get lookup", map[string]any{"name": name, "items": items}, err)
}

// HandleLocations lists issuing offices. ?active=false includes closed ones.
func (h *Handler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "active must be true or false"))
			return
		}
		activeOnly = parsed
	}
	locs, err := h.service.Locations(r.Context(), activeOnly)
	h.respond(w, r, "list locations", map[string]any{"locations": locs}, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, body any, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), op+" failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}
