package middleware

import (
	"net/http"

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/pkg/access"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
)

// RequireCapability rejects callers whose role lacks c. It must run after Auth.
func RequireCapability(c access.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !access.Can(role, c) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions").
					WithDetails(map[string]any{"required": c.String()}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
