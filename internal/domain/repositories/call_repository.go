package repositories

import (
	"context"
	"time"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/google/uuid"
)

// ScheduledCallRepository defines the interface for scheduled call data access
type ScheduledCallRepository interface {
	// Create creates a new scheduled call
	Create(ctx context.Context, call *entities.ScheduledCall) error

	// FindByID retrieves a scheduled call by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ScheduledCall, error)

	// ListPendingFor retrieves pending invitations addressed to the given email
	ListPendingFor(ctx context.Context, recipientEmail string) ([]*entities.ScheduledCall, error)

	// ListFor retrieves all calls the given email participates in
	ListFor(ctx context.Context, email string, limit, offset int) ([]*entities.ScheduledCall, error)

	// RespondIfPending transitions a pending call to accepted or rejected.
	// Returns false when the call was no longer pending.
	RespondIfPending(ctx context.Context, id uuid.UUID, status entities.CallStatus, at time.Time) (bool, error)

	// AcceptAndCreateSession transitions a pending call to accepted and
	// creates its session in one transaction. Returns false when the call
	// was no longer pending; on error neither write is committed.
	AcceptAndCreateSession(ctx context.Context, id uuid.UUID, session *entities.CallSession, at time.Time) (bool, error)

	// Complete marks an accepted call as completed
	Complete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CallSessionRepository defines the interface for call session data access
type CallSessionRepository interface {
	// Create creates a new call session
	Create(ctx context.Context, session *entities.CallSession) error

	// FindByID retrieves a session by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.CallSession, error)

	// FindByScheduledCallID retrieves the session attached to a scheduled call
	FindByScheduledCallID(ctx context.Context, callID uuid.UUID) (*entities.CallSession, error)

	// RecordJoin sets the party's join timestamp if it is still unset and
	// moves a scheduled session to waiting. Joining again is a no-op.
	RecordJoin(ctx context.Context, id uuid.UUID, party entities.CallParty, at time.Time) error

	// ActivateIfBothJoined transitions waiting to active once both join
	// timestamps are present. Returns false when the transition did not
	// apply, either because a party is missing or another request won.
	ActivateIfBothJoined(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// EndActive transitions active to ended, recording who ended the call
	// and why. Returns false when the session was not active.
	EndActive(ctx context.Context, id uuid.UUID, endedBy, reason string, at time.Time, durationSeconds int) (bool, error)
}
