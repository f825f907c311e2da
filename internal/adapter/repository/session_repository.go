package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// callSessionRepository implements the CallSessionRepository interface
type callSessionRepository struct {
	db *gorm.DB
}

// NewCallSessionRepository creates a new call session repository
func NewCallSessionRepository(db *gorm.DB) repositories.CallSessionRepository {
	return &callSessionRepository{db: db}
}

// Create creates a new call session
func (r *callSessionRepository) Create(ctx context.Context, session *entities.CallSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID retrieves a session by ID
func (r *callSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.CallSession, error) {
	var session entities.CallSession
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error

	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByScheduledCallID retrieves the session attached to a scheduled call
func (r *callSessionRepository) FindByScheduledCallID(ctx context.Context, callID uuid.UUID) (*entities.CallSession, error) {
	var session entities.CallSession
	err := r.db.WithContext(ctx).
		Where("scheduled_call_id = ?", callID).
		First(&session).Error

	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordJoin sets the party's join timestamp if it is still unset. The first
// join also moves the session out of scheduled into waiting. Conditional
// updates keep concurrent joins of the same party idempotent.
func (r *callSessionRepository) RecordJoin(ctx context.Context, id uuid.UUID, party entities.CallParty, at time.Time) error {
	column := "caller_joined_at"
	if party == entities.PartyRecipient {
		column = "recipient_joined_at"
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.CallSession{}).
			Where("id = ? AND "+column+" IS NULL", id).
			Update(column, at)
		if result.Error != nil {
			return result.Error
		}

		return tx.Model(&entities.CallSession{}).
			Where("id = ? AND status = ?", id, entities.SessionStatusScheduled).
			Update("status", entities.SessionStatusWaiting).Error
	})
}

// ActivateIfBothJoined transitions waiting to active once both parties joined
func (r *callSessionRepository) ActivateIfBothJoined(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.CallSession{}).
		Where("id = ? AND status = ? AND caller_joined_at IS NOT NULL AND recipient_joined_at IS NOT NULL",
			id, entities.SessionStatusWaiting).
		Updates(map[string]interface{}{
			"status":     entities.SessionStatusActive,
			"started_at": at,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// EndActive transitions active to ended
func (r *callSessionRepository) EndActive(ctx context.Context, id uuid.UUID, endedBy, reason string, at time.Time, durationSeconds int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.CallSession{}).
		Where("id = ? AND status = ?", id, entities.SessionStatusActive).
		Updates(map[string]interface{}{
			"status":           entities.SessionStatusEnded,
			"ended_at":         at,
			"ended_by":         endedBy,
			"end_reason":       reason,
			"duration_seconds": durationSeconds,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
