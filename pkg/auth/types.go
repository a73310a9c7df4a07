package auth

import (
	"context"

	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// Claims is the authenticated identity attached to every request reaching
// the core: who acted (Username, recorded as the audit actor) and with what
// capability tier.
type Claims struct {
	Username string    `json:"username"`
	Role     rbac.Role `json:"role"`
}

type contextKey string

const claimsKey contextKey = "auth_claims"

// WithClaims returns a context carrying the given claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext returns the claims attached to ctx, or nil when the request
// never passed the authentication middleware.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
