package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/internal/policy"
	pkgAuth "github.com/riverbend-alliance/portal-backend/pkg/auth"
	"github.com/riverbend-alliance/portal-backend/pkg/auth/session"
	"github.com/riverbend-alliance/portal-backend/pkg/config"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// SessionCookieName is the HTTP-only cookie carrying the access token for
// browser clients.
const SessionCookieName = "portal_session"

type memberLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// Auth verifies the caller's credentials and seeds the request context
// with a full identity. The session cookie wins; the Authorization bearer
// header is the fallback for non-browser clients. Role and status come
// from the member row, not the token, so demotions and deactivations take
// effect on the next request.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, members memberLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			identity := policy.Identity{
				MemberID: claims.MemberID,
				Role:     claims.Role,
			}
			if members != nil {
				member, err := members.FindByID(r.Context(), claims.MemberID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member"))
					return
				}
				if member == nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "member no longer exists"))
					return
				}
				identity.Email = member.Email
				identity.Role = member.Role
				identity.Status = member.Status
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithMemberID(ctx, identity.MemberID.String())
				ctx = logg.WithActorRole(ctx, string(identity.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the access token, preferring the session
// cookie over the Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
