package admin

import (
	"time"

	audit "dladmin/pkg/platform/audit"
)

// AuditEventsResponse wraps audit events for HTTP responses.
type AuditEventsResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

// InvalidateResponse reports a lookup cache invalidation.
type InvalidateResponse struct {
	Invalidated   []string  `json:"invalidated"`
	InvalidatedAt time.Time `json:"invalidated_at"`
}
