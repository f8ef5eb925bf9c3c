package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dladmin/pkg/platform/httputil"
	adminmw "dladmin/pkg/platform/middleware/admin"
	authmw "dladmin/pkg/platform/middleware/auth"
	"dladmin/pkg/platform/middleware/request"
	"dladmin/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the pieces NewRouter assembles.
type Deps struct {
	Logger    *slog.Logger
	Validator authmw.JWTValidator
	AuthOpts  []authmw.Option
	// Officer routes require a bearer token.
	Officer []Registrar
	// Admin routes require the admin token.
	Admin      []Registrar
	AdminToken string
	Metrics    http.Handler
	Health     map[string]HealthCheck
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthHandler(d.Health))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Validator, d.Logger, d.AuthOpts...))
		for _, reg := range d.Officer {
			reg.Register(r)
		}
	})

	if len(d.Admin) > 0 {
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(d.AdminToken, d.Logger))
			for _, reg := range d.Admin {
				reg.Register(r)
			}
		})
	}
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": results})
	}
}
