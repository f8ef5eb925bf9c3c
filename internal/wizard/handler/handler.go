package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/form"
	"dladmin/internal/person"
	"dladmin/internal/wizard"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

// Service defines the wizard operations the handler drives.
type Service interface {
	Start(ctx context.Context, t wizard.ApplicationType) (wizard.View, error)
	Get(ctx context.Context, wizardID id.WizardID) (wizard.View, error)
	SelectPerson(ctx context.Context, wizardID id.WizardID, p person.Person) (wizard.View, error)
	SetFields(ctx context.Context, wizardID id.WizardID, updates form.Values) (wizard.View, error)
	SetBiometric(ctx context.Context, wizardID id.WizardID, b wizard.Biometric) (wizard.View, error)
	Advance(ctx context.Context, wizardID id.WizardID) (wizard.NavigationResult, error)
	Back(ctx context.Context, wizardID id.WizardID) (wizard.NavigationResult, error)
	GoTo(ctx context.Context, wizardID id.WizardID, target wizard.StepID) (wizard.NavigationResult, error)
	DismissBanner(ctx context.Context, wizardID id.WizardID) (wizard.View, error)
	Abandon(ctx context.Context, wizardID id.WizardID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts wizard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/wizards", h.HandleStart)
	r.Get("/wizards/{id}", h.HandleGet)
	r.Delete("/wizards/{id}", h.HandleAbandon)
	r.Put("/wizards/{id}/person", h.HandleSelectPerson)
	r.Patch("/wizards/{id}/fields", h.HandleSetFields)
	r.Put("/wizards/{id}/biometric", h.HandleSetBiometric)
	r.Post("/wizards/{id}/next", h.HandleAdvance)
	r.Post("/wizards/{id}/back", h.HandleBack)
	r.Post("/wizards/{id}/goto", h.HandleGoTo)
	r.Delete("/wizards/{id}/banner", h.HandleDismissBanner)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.Start(ctx, req.parsedType)
	if err != nil {
		h.fail(ctx, w, "start wizard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), wid)
	h.respond(w, r, "get wizard", view, err)
}

func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	if err := h.service.Abandon(r.Context(), wid); err != nil {
		h.fail(r.Context(), w, "abandon wizard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSelectPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PersonRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SelectPerson(ctx, wid, req.parsed)
	h.respond(w, r, "select person", view, err)
}

func (h *Handler) HandleSetFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[FieldsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SetFields(ctx, wid, req.Fields)
	h.respond(w, r, "set fields", view, err)
}

func (h *Handler) HandleSetBiometric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BiometricRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SetBiometric(ctx, wid, wizard.Biometric{
		PhotoRef:        req.PhotoRef,
		SignatureRef:    req.SignatureRef,
		FingerprintRefs: req.FingerprintRefs,
	})
	h.respond(w, r, "set biometric", view, err)
}

func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	res, err := h.service.Advance(r.Context(), wid)
	h.respond(w, r, "advance wizard", res, err)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	res, err := h.service.Back(r.Context(), wid)
	h.respond(w, r, "wizard back", res, err)
}

func (h *Handler) HandleGoTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[GoToRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.GoTo(ctx, wid, wizard.StepID(req.Step))
	h.respond(w, r, "wizard goto", res, err)
}

func (h *Handler) HandleDismissBanner(w http.ResponseWriter, r *http.Request) {
	wid, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	view, err := h.service.DismissBanner(r.Context(), wid)
	h.respond(w, r, "dismiss banner", view, err)
}

func (h *Handler) wizardID(w http.ResponseWriter, r *http.Request) (id.WizardID, bool) {
	wid, err := id.ParseWizardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.WizardID{}, false
	}
	return wid, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, body any, err error) {
	if err != nil {
		h.fail(r.Context(), w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// fail writes err. Rejected field updates list every offending field.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelInfo
	if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)

	var fieldErrs form.Errors
	if errors.As(err, &fieldErrs) {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":             string(dErrors.CodeValidation),
			"error_description": "one or more fields were rejected",
			"fields":            fieldErrs,
		})
		return
	}
	httputil.WriteError(w, err)
}
