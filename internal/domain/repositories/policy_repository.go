package repositories

import (
	"context"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/google/uuid"
)

// PolicyRepository defines the interface for court order policy data access
type PolicyRepository interface {
	// Create stores a new policy and deactivates any previous active one
	Create(ctx context.Context, policy *entities.Policy) error

	// FindActive retrieves the currently active policy
	FindActive(ctx context.Context) (*entities.Policy, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create stores a notification
	Create(ctx context.Context, notification *entities.Notification) error

	// ListFor retrieves notifications for a recipient, most recent first
	ListFor(ctx context.Context, recipientEmail string, limit, offset int) ([]*entities.Notification, error)

	// MarkRead records that a notification was read
	MarkRead(ctx context.Context, id uuid.UUID) error
}
