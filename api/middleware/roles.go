package middleware

import (
	"net/http"

	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// RequireRole gates a route subtree on a minimum effective role, so
// allow-listed emails pass regardless of their stored role. Fine-grained
// checks still run inside the services; this is the outer fence.
func RequireRole(pol *policy.Policy, minimum enums.MemberRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			effective := identity.Role
			if pol != nil {
				effective = pol.EffectiveRole(identity)
			}
			if !effective.AtLeast(minimum) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
