package middleware

import (
	"net/http"
	"strings"

	"github.com/agromart/agromart-backend/api/responses"
	pkgAuth "github.com/agromart/agromart-backend/pkg/auth"
	"github.com/agromart/agromart-backend/pkg/auth/session"
	"github.com/agromart/agromart-backend/pkg/config"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
)

// Auth validates the bearer token, checks that its session is still live and
// seeds the request context with the caller identity.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if sessions != nil {
				ok, err := sessions.HasSession(ctx, claims.ID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked"))
					return
				}
			}

			ctx = withAccessID(WithIdentity(ctx, claims.UserID, claims.Role), claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, claims.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

// OptionalAuth runs Auth only when the request carries an Authorization
// header, so public routes can still tell who is asking.
func OptionalAuth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	authenticate := Auth(cfg, sessions, logg)
	return func(next http.Handler) http.Handler {
		guarded := authenticate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
