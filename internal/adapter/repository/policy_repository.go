package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// policyRepository implements the PolicyRepository interface
type policyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *gorm.DB) repositories.PolicyRepository {
	return &policyRepository{db: db}
}

// Create stores a new policy and deactivates any previous active one
func (r *policyRepository) Create(ctx context.Context, policy *entities.Policy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Policy{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		policy.IsActive = true
		return tx.Create(policy).Error
	})
}

// FindActive retrieves the currently active policy
func (r *policyRepository) FindActive(ctx context.Context) (*entities.Policy, error) {
	var policy entities.Policy
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&policy).Error

	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) repositories.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create stores a notification
func (r *notificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListFor retrieves notifications for a recipient, most recent first
func (r *notificationRepository) ListFor(ctx context.Context, recipientEmail string, limit, offset int) ([]*entities.Notification, error) {
	var notifications []*entities.Notification
	query := r.db.WithContext(ctx).
		Where("recipient_email = ?", recipientEmail).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead records that a notification was read
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", time.Now()).Error
}
