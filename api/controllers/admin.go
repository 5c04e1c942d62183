package controllers

import (
	"context"
	"net/http"

	"github.com/agromart/agromart-backend/api/middleware"
	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/logger"
)

// Announcer fans a system announcement out to every active user.
type Announcer interface {
	Announcement(ctx context.Context, title, message, link string) (int64, error)
}

type announcementRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
	Link    string `json:"link" validate:"omitempty,url,max=2048"`
}

func AdminAnnouncement(announcer Announcer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if announcer == nil {
			serviceUnavailable(w, r, logg, "announcement")
			return
		}
		var payload announcementRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := announcer.Announcement(r.Context(), payload.Title, payload.Message, payload.Link)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithField(r.Context(), "recipients", count)
		logg.Info(ctx, "admin.announcement.sent")
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int64{"count": count})
	}
}

// AdminDeactivateUser soft-deactivates a user and revokes their sessions.
func AdminDeactivateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "users")
			return
		}
		actorID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Deactivate(r.Context(), actorID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithFields(r.Context(), map[string]any{
			"target_user_id": userID.String(),
			"actor_role":     string(middleware.RoleFromContext(r.Context())),
		})
		logg.Info(ctx, "admin.user.deactivated")
		responses.WriteSuccess(w, user)
	}
}
