package middleware

import (
	"context"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
)

type contextKey string

const (
	ctxMemberID contextKey = "member_id"
	ctxRole     contextKey = "actor_role"
	ctxIdentity contextKey = "identity"
)

func MemberIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxMemberID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// IdentityFromContext returns the authenticated caller's identity. The
// second return is false on unauthenticated requests.
func IdentityFromContext(ctx context.Context) (policy.Identity, bool) {
	if ctx == nil {
		return policy.Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(policy.Identity)
	return identity, ok
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, identity policy.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxMemberID, identity.MemberID.String())
	ctx = context.WithValue(ctx, ctxRole, string(identity.Role))
	return context.WithValue(ctx, ctxIdentity, identity)
}
