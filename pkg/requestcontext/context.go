// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
//	officerID := requestcontext.OfficerID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject a fixed clock with requestcontext.WithTime(ctx, fixedTime).
package requestcontext

import (
	"context"
	"time"

	id "dladmin/pkg/domain"
)

type (
	officerIDKey   struct{}
	locationIDKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyOfficerID   = officerIDKey{}
	ContextKeyLocationID  = locationIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// OfficerID retrieves the authenticated licensing officer from the context.
// Returns the zero value if not set.
func OfficerID(ctx context.Context) id.OfficerID {
	if officerID, ok := ctx.Value(ContextKeyOfficerID).(id.OfficerID); ok {
		return officerID
	}
	return id.OfficerID{}
}

// WithOfficerID injects an officer ID into the context.
func WithOfficerID(ctx context.Context, officerID id.OfficerID) context.Context {
	return context.WithValue(ctx, ContextKeyOfficerID, officerID)
}

// LocationID retrieves the officer's licensing office from the context.
func LocationID(ctx context.Context) id.LocationID {
	if locationID, ok := ctx.Value(ContextKeyLocationID).(id.LocationID); ok {
		return locationID
	}
	return id.LocationID{}
}

// WithLocationID injects the officer's licensing office into the context.
func WithLocationID(ctx context.Context, locationID id.LocationID) context.Context {
	return context.WithValue(ctx, ContextKeyLocationID, locationID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, background refreshes).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
