package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// scheduledCallRepository implements the ScheduledCallRepository interface
type scheduledCallRepository struct {
	db *gorm.DB
}

// NewScheduledCallRepository creates a new scheduled call repository
func NewScheduledCallRepository(db *gorm.DB) repositories.ScheduledCallRepository {
	return &scheduledCallRepository{db: db}
}

// Create creates a new scheduled call
func (r *scheduledCallRepository) Create(ctx context.Context, call *entities.ScheduledCall) error {
	return r.db.WithContext(ctx).Create(call).Error
}

// FindByID retrieves a scheduled call by ID
func (r *scheduledCallRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ScheduledCall, error) {
	var call entities.ScheduledCall
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&call).Error

	if err != nil {
		return nil, err
	}
	return &call, nil
}

// ListPendingFor retrieves pending invitations addressed to the given email
func (r *scheduledCallRepository) ListPendingFor(ctx context.Context, recipientEmail string) ([]*entities.ScheduledCall, error) {
	var calls []*entities.ScheduledCall
	err := r.db.WithContext(ctx).
		Where("recipient_email = ? AND status = ?", recipientEmail, entities.CallStatusPending).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&calls).Error

	if err != nil {
		return nil, err
	}
	return calls, nil
}

// ListFor retrieves all calls the given email participates in
func (r *scheduledCallRepository) ListFor(ctx context.Context, email string, limit, offset int) ([]*entities.ScheduledCall, error) {
	var calls []*entities.ScheduledCall
	query := r.db.WithContext(ctx).
		Where("caller_email = ? OR recipient_email = ?", email, email).
		Order("scheduled_date DESC, scheduled_time DESC")

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// RespondIfPending transitions a pending call to accepted or rejected
func (r *scheduledCallRepository) RespondIfPending(ctx context.Context, id uuid.UUID, status entities.CallStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": status}
	switch status {
	case entities.CallStatusAccepted:
		updates["accepted_at"] = at
	case entities.CallStatusRejected:
		updates["rejected_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&entities.ScheduledCall{}).
		Where("id = ? AND status = ?", id, entities.CallStatusPending).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AcceptAndCreateSession accepts a pending call and creates its session
// atomically so an accepted call can never exist without a joinable session
func (r *scheduledCallRepository) AcceptAndCreateSession(ctx context.Context, id uuid.UUID, session *entities.CallSession, at time.Time) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.ScheduledCall{}).
			Where("id = ? AND status = ?", id, entities.CallStatusPending).
			Updates(map[string]interface{}{
				"status":      entities.CallStatusAccepted,
				"accepted_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// Complete marks an accepted call as completed
func (r *scheduledCallRepository) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.ScheduledCall{}).
		Where("id = ? AND status = ?", id, entities.CallStatusAccepted).
		Updates(map[string]interface{}{
			"status":       entities.CallStatusCompleted,
			"completed_at": at,
		}).Error
}
