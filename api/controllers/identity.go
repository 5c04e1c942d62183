package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/api/middleware"
	"github.com/agromart/agromart-backend/api/responses"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
)

// currentUser returns the authenticated user id or writes a 401 and
// reports false.
func currentUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	return userID, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
