package notifications

import (
	"context"
	"strconv"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for notifications. Recipient and
// viewer lists are postgres text arrays.
type Repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	UpdateStatus(ctx context.Context, id uint, status enums.NotificationStatus, sentAt *time.Time) error
	ListUnread(ctx context.Context, userID uint) ([]models.Notification, error)
	ListSent(ctx context.Context, senderID uint) ([]models.Notification, error)
	MarkViewed(ctx context.Context, id, userID uint) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uint, status enums.NotificationStatus, sentAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  status,
			"sent_at": sentAt,
		}).Error
}

// ListUnread returns notifications addressed to userID that the user neither
// authored nor viewed, newest first.
func (r *repositoryImpl) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	id := strconv.FormatUint(uint64(userID), 10)
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Where("? = ANY(recipients)", id).
		Where("sender_id IS NULL OR sender_id <> ?", userID).
		Where("NOT (? = ANY(viewed_by))", id).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repositoryImpl) ListSent(ctx context.Context, senderID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// MarkViewed appends userID to viewed_by unless already present. It reports
// whether a row changed.
func (r *repositoryImpl) MarkViewed(ctx context.Context, id, userID uint) (bool, error) {
	viewer := strconv.FormatUint(uint64(userID), 10)
	result := r.db.WithContext(ctx).Exec(
		`UPDATE notifications SET viewed_by = array_append(viewed_by, ?), updated_at = NOW()
		 WHERE id = ? AND NOT (? = ANY(viewed_by))`,
		viewer, id, viewer,
	)
	return result.RowsAffected > 0, result.Error
}
