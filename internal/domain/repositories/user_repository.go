package repositories

import (
	"context"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user record
	Create(ctx context.Context, user *entities.User) error

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail retrieves a user by email address
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// Update updates an existing user
	Update(ctx context.Context, user *entities.User) error

	// UpdateLastLogin records the most recent successful sign-in
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// AuthSessionRepository defines the interface for auth session data access
type AuthSessionRepository interface {
	// Create creates a new auth session
	Create(ctx context.Context, session *entities.AuthSession) error

	// FindByToken retrieves a session by its token
	FindByToken(ctx context.Context, token string) (*entities.AuthSession, error)

	// Touch records that the session was just used
	Touch(ctx context.Context, id uuid.UUID) error

	// Revoke marks a session as revoked
	Revoke(ctx context.Context, token string) error
}
