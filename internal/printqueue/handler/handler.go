package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/printqueue"
	id "dladmin/pkg/domain"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

type Service interface {
	Queue(ctx context.Context, location id.LocationID, now time.Time) (printqueue.Queue, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/print-jobs", h.HandleQueue)
}

// HandleQueue lists print jobs. ?location_id filters to one office.
func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var location id.LocationID
	if v := r.URL.Query().Get("location_id"); v != "" {
		parsed, err := id.ParseLocationID(v)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		location = parsed
	}

	q, err := h.service.Queue(ctx, location, requestcontext.Now(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list print jobs failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}
