package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/pagination"
)

// Service exposes the notification store to controllers and domain services.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*NotificationDTO, error)
	CreateBulk(ctx context.Context, input BulkInput) (int64, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error)
	MarkUnread(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesDTO, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error)
}

type service struct {
	repo         Repository
	defaultLimit int
	now          func() time.Time
}

// NewService builds the notification service. defaultLimit applies when a
// listing does not name a page size.
func NewService(repo Repository, defaultLimit int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{
		repo:         repo,
		defaultLimit: pagination.NormalizeLimit(defaultLimit),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*NotificationDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := validateContent(input.Type, input.Title, input.Message); err != nil {
		return nil, err
	}
	if err := input.Data.Validate(input.Type); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	row := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   strings.TrimSpace(input.Title),
		Message: strings.TrimSpace(input.Message),
		Data:    input.Data.Normalize(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	dto := toDTO(*row)
	return &dto, nil
}

// CreateBulk writes one unread row per distinct user id as a single batch.
func (s *service) CreateBulk(ctx context.Context, input BulkInput) (int64, error) {
	userIDs := uniqueIDs(input.UserIDs)
	if len(userIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one user id required")
	}
	if err := validateContent(input.Type, input.Title, input.Message); err != nil {
		return 0, err
	}
	if err := input.Data.Validate(input.Type); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	data := input.Data.Normalize()
	createdAt := s.now()
	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.Notification{
			UserID:    id,
			Type:      input.Type,
			Title:     title,
			Message:   message,
			Data:      data,
			CreatedAt: createdAt,
		})
	}

	count, err := s.repo.CreateBulk(ctx, rows)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "one or more users not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notifications")
	}
	return count, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	filter, err := enums.ParseNotificationFilter(strings.TrimSpace(params.Filter))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter").
			WithDetails(map[string]any{"filter": params.Filter})
	}

	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	page := pagination.Params{Page: params.Page, Limit: limit}.Normalize()

	result, err := s.repo.List(ctx, listNotificationsParams{
		UserID: params.UserID,
		Filter: filter,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items := make([]NotificationDTO, 0, len(result.Items))
	for _, n := range result.Items {
		items = append(items, toDTO(n))
	}
	return &ListResult{
		Notifications: items,
		UnreadCount:   result.UnreadCount,
		Pagination:    pagination.Build(page, result.Total),
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error) {
	return s.setRead(ctx, userID, notificationID, true)
}

func (s *service) MarkUnread(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error) {
	return s.setRead(ctx, userID, notificationID, false)
}

// setRead treats rows owned by another user exactly like missing rows.
func (s *service) setRead(ctx context.Context, userID, notificationID uuid.UUID, read bool) (*NotificationDTO, error) {
	if err := requireIDs(userID, notificationID); err != nil {
		return nil, err
	}

	row, err := s.repo.SetRead(ctx, userID, notificationID, read, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := requireIDs(userID, notificationID); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.ClearAll(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear notifications")
	}
	return count, nil
}

func (s *service) GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesDTO, error) {
	pref, err := s.loadPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toPreferencesDTO(pref)
	return &dto, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error) {
	pref, err := s.loadPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	input.apply(&pref)
	pref.UpdatedAt = s.now()

	if err := s.repo.UpsertPreference(ctx, &pref); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notification preferences")
	}
	dto := toPreferencesDTO(pref)
	return &dto, nil
}

func (s *service) loadPreference(ctx context.Context, userID uuid.UUID) (models.NotificationPreference, error) {
	if userID == uuid.Nil {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	stored, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return models.NotificationPreference{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}
	if stored == nil {
		return models.DefaultNotificationPreference(userID), nil
	}
	return *stored, nil
}

func validateContent(t enums.NotificationType, title, message string) error {
	if !t.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type").
			WithDetails(map[string]any{"type": t, "allowed": enums.NotificationTypes()})
	}
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(message) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	return nil
}

func requireIDs(userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
