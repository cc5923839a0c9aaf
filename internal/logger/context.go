package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey int

const (
	requestIDKey contextKey = iota
	tenantKey
)

// WithRequestID returns a new context with the given request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTenant records the tenant for log correlation only. Tenant scoping of
// data access never reads this value.
func WithTenant(ctx context.Context, tid string) context.Context {
	return context.WithValue(ctx, tenantKey, tid)
}

// Tenant returns the tenant stored by WithTenant, or "".
func Tenant(ctx context.Context) string {
	tid, _ := ctx.Value(tenantKey).(string)
	return tid
}
