package controllers

import (
	"context"
	"net/http"

	"github.com/hbnb-dev/hbnb-backend/api/middleware"
	"github.com/hbnb-dev/hbnb-backend/api/responses"
	"github.com/hbnb-dev/hbnb-backend/api/validators"
	"github.com/hbnb-dev/hbnb-backend/internal/auth"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// SessionService is the slice of the auth service the HTTP layer needs.
type SessionService interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

// AuthLogin exchanges credentials for an access token.
func AuthLogin(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
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
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh rotates the refresh token and issues a new access token.
func AuthRefresh(svc SessionService, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session tied to the presented access token.
func AuthLogout(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		p := middleware.PrincipalFromContext(r.Context())
		if p.IsAnonymous() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Unauthenticated("authentication required"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe returns the caller's own user record.
func AuthMe(svc facade.Users, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFromContext(r.Context())
		if p.IsAnonymous() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Unauthenticated("authentication required"))
			return
		}
		user, err := svc.GetUser(r.Context(), p, p.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
