package middleware

import (
	"context"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	TenantID tenant.ID
	UserID   string
}

type principalCtxKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the caller stored by the session middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok && !p.TenantID.IsZero()
}

// TenantFromContext returns the caller's tenant. There is no default
// tenant: handlers must treat !ok as unauthenticated.
func TenantFromContext(ctx context.Context) (tenant.ID, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.TenantID, ok
}
