// Package handler exposes the licensing rules as stateless JSON endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	"dladmin/internal/medical"
	"dladmin/internal/person"
	"dladmin/internal/vision"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/requestcontext"
)

type Handler struct {
	policy eligibility.Policy
	logger *slog.Logger
}

// New builds the rules handler. policy is the default already-held policy.
func New(policy eligibility.Policy, logger *slog.Logger) *Handler {
	return &Handler{policy: policy, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/categories", h.HandleCategories)
	r.Post("/vision/evaluate", h.HandleVision)
	r.Post("/medical/evaluate", h.HandleMedical)
	r.Post("/eligibility/evaluate", h.HandleEligibility)
	r.Post("/police-clearance/evaluate", h.HandlePoliceClearance)
}

type categoryResponse struct {
	Code                       string   `json:"code"`
	Kind                       string   `json:"kind"`
	Description                string   `json:"description"`
	MinimumAge                 int      `json:"minimum_age"`
	Prerequisites              []string `json:"prerequisites,omitempty"`
	RequiresLearnerPermit      bool     `json:"requires_learner_permit"`
	RequiresMedicalCertificate bool     `json:"requires_medical_certificate"`
	RequiresPoliceClearance    bool     `json:"requires_police_clearance"`
	Implies                    []string `json:"implies,omitempty"`
}

func toCategoryResponses(cats []category.Category) []categoryResponse {
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{
			Code:                       c.Code,
			Kind:                       string(c.Kind),
			Description:                c.Description,
			MinimumAge:                 c.MinimumAge,
			Prerequisites:              c.Prerequisites,
			RequiresLearnerPermit:      c.RequiresLearnerPermit,
			RequiresMedicalCertificate: c.RequiresMedicalCertificate,
			RequiresPoliceClearance:    c.RequiresPoliceClearance,
			Implies:                    c.Implies,
		}
	}
	return out
}

// HandleCategories returns the catalog in display order.
func (h *Handler) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"licenses":              toCategoryResponses(category.Licenses()),
		"permits":               toCategoryResponses(category.Permits()),
		"learner_permits":       category.LearnerPermitCodes,
		"medical_age_threshold": category.MedicalAgeThreshold,
	})
}

func (h *Handler) HandleVision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[VisionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vision.Evaluate(req.TestData))
}

func (h *Handler) HandleMedical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MedicalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	requirement := medical.RequirementFor(req.Age, req.reqs...)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"requirement": requirement,
		"step":        medical.EvaluateStep(&req.Information, requirement),
	})
}

func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[EligibilityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	policy := h.policy
	if req.policy != "" {
		policy = req.policy
	}
	in := eligibility.Input{
		Person:   person.Person{BirthDate: req.birth},
		Existing: req.Existing,
		Now:      requestcontext.Now(ctx),
		Policy:   policy,
	}

	var results []eligibility.Result
	if req.Category == "" {
		results = eligibility.ResolveAll(req.kind, in)
	} else {
		results = []eligibility.Result{eligibility.ResolveCode(req.kind, req.Category, in)}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"age":     person.AgeAt(req.birth, in.Now),
		"results": results,
	})
}

func (h *Handler) HandlePoliceClearance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PoliceClearanceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"professional_categories":   eligibility.NormalizePermits(req.Selected),
		"police_clearance_required": eligibility.RequiresPoliceClearance(req.Selected, req.Existing),
	})
}
