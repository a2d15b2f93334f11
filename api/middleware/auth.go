package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hbnb-dev/hbnb-backend/api/responses"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	pkgAuth "github.com/hbnb-dev/hbnb-backend/pkg/auth"
	"github.com/hbnb-dev/hbnb-backend/pkg/auth/session"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// Auth attaches the caller's principal. No Authorization header means an
// anonymous request; any header that does not carry a live bearer token is
// answered with 401. A nil sessions checker skips the revocation lookup.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authenticate(r.Context(), cfg, sessions, header)
			if err != nil {
				if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="hbnb", error="invalid_token"`)
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			p := policy.Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin}
			ctx := WithPrincipal(r.Context(), p, claims.ID)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, p.UserID.String()), p.Role())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, sessions session.AccessSessionChecker, header string) (*pkgAuth.AccessTokenClaims, error) {
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return nil, pkgerrors.Unauthenticated("authorization scheme must be Bearer")
	}

	claims, err := pkgAuth.ResolveSession(cfg, token)
	switch {
	case errors.Is(err, pkgAuth.ErrMissingToken):
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing credentials")
	case errors.Is(err, pkgAuth.ErrExpiredToken):
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	if sessions == nil {
		return claims, nil
	}
	live, err := sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !live {
		return nil, pkgerrors.Unauthenticated("session revoked")
	}
	return claims, nil
}
