package entities

import (
	"time"

	"github.com/google/uuid"
)

// AuthSession represents an issued login session
type AuthSession struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Token      string     `json:"-" gorm:"type:text;uniqueIndex;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"type:timestamp;not null;index"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" gorm:"type:timestamp"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" gorm:"type:timestamp"`
}

// TableName specifies the table name for AuthSession
func (AuthSession) TableName() string {
	return "auth_sessions"
}

// NewAuthSession creates a new auth session
func NewAuthSession(userID uuid.UUID, token string, expiresAt time.Time) *AuthSession {
	return &AuthSession{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

// IsExpired checks if the session is expired
func (s *AuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid checks if the session is valid (not expired and not revoked)
func (s *AuthSession) IsValid() bool {
	if s == nil {
		return false
	}
	return !s.IsExpired() && s.RevokedAt == nil
}

// Revoke revokes the session
func (s *AuthSession) Revoke() {
	now := time.Now()
	s.RevokedAt = &now
}
