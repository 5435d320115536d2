package controllers

import (
	"net/http"

	"github.com/riverbend-alliance/portal-backend/api/middleware"
	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/internal/policy"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// callerIdentity pulls the authenticated identity or writes the 401 itself.
func callerIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (policy.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return policy.Identity{}, false
	}
	return identity, true
}
