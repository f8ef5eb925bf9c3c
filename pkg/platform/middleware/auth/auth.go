// Package auth authenticates licensing officers from bearer tokens and places
// the officer and their office in the request context.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	audit "dladmin/pkg/platform/audit"
	"dladmin/pkg/platform/httputil"
	"dladmin/pkg/platform/middleware/metadata"
	"dladmin/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	OfficerID  string
	LocationID string
	JTI        string
}

type Option func(*config)

type config struct {
	auditor audit.Publisher
}

// WithAuditor records auth_failed events for rejected requests.
func WithAuditor(p audit.Publisher) Option {
	return func(c *config) { c.auditor = p }
}

func RequireAuth(validator JWTValidator, logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason, description string, err error) {
				logger.WarnContext(ctx, "unauthorized access - "+reason,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", metadata.ClientIPFromRequest(r),
				)
				if cfg.auditor != nil {
					if aerr := cfg.auditor.Emit(ctx, audit.Event{
						Action:    string(audit.EventAuthFailed),
						Subject:   r.URL.Path,
						Reason:    reason,
						RequestID: requestcontext.RequestID(ctx),
					}); aerr != nil {
						logger.WarnContext(ctx, "failed to audit auth failure", "error", aerr)
					}
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, description))
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				reject("missing token", "Missing or invalid Authorization header", nil)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				reject("invalid token", "Invalid or expired token", err)
				return
			}

			officerID, err := id.ParseOfficerID(claims.OfficerID)
			if err != nil {
				reject("invalid officer claim", "Invalid or expired token", err)
				return
			}

			ctx = requestcontext.WithOfficerID(ctx, officerID)
			if claims.LocationID != "" {
				if locationID, err := id.ParseLocationID(claims.LocationID); err == nil {
					ctx = requestcontext.WithLocationID(ctx, locationID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
