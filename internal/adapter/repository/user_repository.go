package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user record
func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user
func (r *userRepository) Update(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateLastLogin records the most recent successful sign-in
func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

// authSessionRepository implements the AuthSessionRepository interface
type authSessionRepository struct {
	db *gorm.DB
}

// NewAuthSessionRepository creates a new auth session repository
func NewAuthSessionRepository(db *gorm.DB) repositories.AuthSessionRepository {
	return &authSessionRepository{db: db}
}

// Create creates a new auth session
func (r *authSessionRepository) Create(ctx context.Context, session *entities.AuthSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByToken retrieves a session by its token
func (r *authSessionRepository) FindByToken(ctx context.Context, token string) (*entities.AuthSession, error) {
	var session entities.AuthSession
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&session).Error

	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Touch records that the session was just used
func (r *authSessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.AuthSession{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// Revoke marks a session as revoked
func (r *authSessionRepository) Revoke(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&entities.AuthSession{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", time.Now()).Error
}
