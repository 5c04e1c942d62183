package notifications

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
)

const bulkInsertBatchSize = 500

// Repository defines persistence operations for notifications and the
// per-user delivery preferences.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	CreateBulk(ctx context.Context, rows []models.Notification) (int64, error)
	List(ctx context.Context, params listNotificationsParams) (listNotificationsResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	SetRead(ctx context.Context, userID, notificationID uuid.UUID, read bool, now time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	GetPreference(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	PreferencesFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error
}

type repository struct {
	db *gorm.DB
}

type listNotificationsParams struct {
	UserID uuid.UUID
	Filter enums.NotificationFilter
	Offset int
	Limit  int
}

type listNotificationsResult struct {
	Items       []models.Notification
	Total       int64
	UnreadCount int64
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateBulk inserts every row or none of them.
func (r *repository) CreateBulk(ctx context.Context, rows []models.Notification) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.CreateInBatches(&rows, bulkInsertBatchSize)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// snapshotTxOptions returns the options that give every statement in a
// transaction the same snapshot. Postgres needs REPEATABLE READ for that;
// sqlite serializes transactions already and takes no options.
func snapshotTxOptions(dialect string) []*sql.TxOptions {
	if dialect != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

// List runs the page, total and unread queries inside one REPEATABLE READ
// transaction so the three figures describe the same snapshot.
func (r *repository) List(ctx context.Context, params listNotificationsParams) (listNotificationsResult, error) {
	var result listNotificationsResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filtered := func() *gorm.DB {
			q := tx.Model(&models.Notification{}).Where("user_id = ?", params.UserID)
			if params.Filter == enums.NotificationFilterUnread {
				q = q.Where("is_read = ?", false)
			} else if typ, ok := params.Filter.Type(); ok {
				q = q.Where("type = ?", typ)
			}
			return q
		}

		if err := filtered().Count(&result.Total).Error; err != nil {
			return err
		}
		if err := filtered().
			Order("created_at DESC").
			Order("id DESC").
			Offset(params.Offset).
			Limit(params.Limit).
			Find(&result.Items).Error; err != nil {
			return err
		}
		return tx.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", params.UserID, false).
			Count(&result.UnreadCount).Error
	}, snapshotTxOptions(r.db.Dialector.Name())...)
	return result, err
}

func (r *repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// SetRead flips the read flag of a notification owned by userID. It returns
// gorm.ErrRecordNotFound when the row is absent or owned by someone else.
func (r *repository) SetRead(ctx context.Context, userID, notificationID uuid.UUID, read bool, now time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", notificationID, userID).
			First(&notification).Error; err != nil {
			return err
		}
		if notification.IsRead == read {
			return nil
		}

		var readAt *time.Time
		if read {
			readAt = &now
		}
		if err := tx.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Updates(map[string]any{"is_read": read, "read_at": readAt}).Error; err != nil {
			return err
		}
		notification.IsRead = read
		notification.ReadAt = readAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// DeleteReadOlderThan removes read notifications created before cutoff.
func (r *repository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// GetPreference returns nil without error when the user has no stored row.
func (r *repository) GetPreference(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// PreferencesFor loads stored rows for the given users. Users without a row
// are absent from the map.
func (r *repository) PreferencesFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.NotificationPreference, error) {
	out := make(map[uuid.UUID]models.NotificationPreference, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []models.NotificationPreference
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}

func (r *repository) UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_placed", "order_status", "new_product", "low_stock", "welcome", "updated_at",
			}),
		}).
		Create(pref).Error
}
