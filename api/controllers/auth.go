package controllers

import (
	"net/http"

	"github.com/riverbend-alliance/portal-backend/api/middleware"
	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/api/validators"
	"github.com/riverbend-alliance/portal-backend/internal/auth"
	pkgAuth "github.com/riverbend-alliance/portal-backend/pkg/auth"
	"github.com/riverbend-alliance/portal-backend/pkg/config"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// AuthRegister creates a new member account. New accounts start pending
// unless the email is on the admin allow-list.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// AuthLogin exchanges credentials for a session. Browser clients get the
// access token in an HTTP-only cookie; the body also carries the token
// pair for API clients.
func AuthLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh rotates the refresh token and re-issues the session cookie.
func AuthRefresh(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the server-side session and clears the cookie. The
// session id comes from the presented token, expired tokens included, so
// a stale browser tab can still sign out cleanly.
func AuthLogout(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := ""
		if token := middleware.TokenFromRequest(r); token != "" {
			if claims, err := pkgAuth.ParseAccessTokenAllowExpired(cfg.JWT, token); err == nil {
				accessID = claims.ID
			}
		}

		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, cfg)
		responses.WriteSuccess(w, nil)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg *config.Config, token string) {
	if cfg == nil || token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    token,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(cfg.JWT.AccessTokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg *config.Config) {
	if cfg == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    "",
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieName(cfg *config.Config) string {
	if cfg.Cookie.Name != "" {
		return cfg.Cookie.Name
	}
	return middleware.SessionCookieName
}
