package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/application"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

// Service submits completed wizards.
type Service interface {
	Submit(ctx context.Context, wizardID id.WizardID) (*application.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the submission endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/wizards/{id}/submit", h.HandleSubmit)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wid, err := id.ParseWizardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Submit(ctx, wid)
	if err != nil {
		level := slog.LevelInfo
		if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "submit application failed",
			"wizard_id", wid.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}
