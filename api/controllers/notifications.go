package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	"github.com/agromart/agromart-backend/internal/notifications"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/types"
)

// ListNotifications returns one page of the caller's notifications.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), notifications.ListParams{
			UserID: userID,
			Page:   page.Page,
			Limit:  page.Limit,
			Filter: strings.TrimSpace(r.URL.Query().Get("filter")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func NotificationUnreadCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		count, err := svc.UnreadCount(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unreadCount": count})
	}
}

// MarkNotificationRead flags a single notification owned by the caller as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return notificationAction(svc, logg, notifications.Service.MarkRead)
}

func MarkNotificationUnread(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return notificationAction(svc, logg, notifications.Service.MarkUnread)
}

func notificationAction(
	svc notifications.Service,
	logg *logger.Logger,
	action func(notifications.Service, context.Context, uuid.UUID, uuid.UUID) (*notifications.NotificationDTO, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		notificationID, err := validators.ParseUUIDParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := action(svc, r.Context(), userID, notificationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// MarkAllNotificationsRead is idempotent; a second call updates nothing.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		updated, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": updated})
	}
}

func DeleteNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		notificationID, err := validators.ParseUUIDParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), userID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func ClearNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		deleted, err := svc.ClearAll(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": deleted})
	}
}

func GetNotificationPreferences(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		prefs, err := svc.GetPreferences(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func UpdateNotificationPreferences(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		var payload notifications.UpdatePreferencesInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prefs, err := svc.UpdatePreferences(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

type createNotificationRequest struct {
	UserID  *uuid.UUID              `json:"userId" validate:"required_without=UserIDs"`
	UserIDs []uuid.UUID             `json:"userIds" validate:"required_without=UserID,max=1000"`
	Type    enums.NotificationType  `json:"type" validate:"required,notification_type"`
	Title   string                  `json:"title" validate:"required,max=255"`
	Message string                  `json:"message" validate:"required,max=5000"`
	Data    *types.NotificationData `json:"data"`
}

// AdminCreateNotification writes one notification for userId, or the same
// notification for every id in userIds. Bulk requests report only a count.
func AdminCreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "notifications")
			return
		}

		var payload createNotificationRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.UserID != nil && len(payload.UserIDs) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "provide either userId or userIds, not both"))
			return
		}

		if payload.UserID != nil {
			dto, err := svc.Create(r.Context(), notifications.CreateInput{
				UserID:  *payload.UserID,
				Type:    payload.Type,
				Title:   payload.Title,
				Message: payload.Message,
				Data:    payload.Data,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, dto)
			return
		}

		count, err := svc.CreateBulk(r.Context(), notifications.BulkInput{
			UserIDs: payload.UserIDs,
			Type:    payload.Type,
			Title:   payload.Title,
			Message: payload.Message,
			Data:    payload.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int64{"count": count})
	}
}
