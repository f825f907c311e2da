package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
	"github.com/accordfamily/accord-backend/internal/usecase/moderation"
	"github.com/accordfamily/accord-backend/pkg/jwt"
)

const sessionLifetime = 24 * time.Hour

// Service handles account registration and sign-in
type Service struct {
	users    repositories.UserRepository
	sessions repositories.AuthSessionRepository
	jwt      *jwt.Manager
	logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(users repositories.UserRepository, sessions repositories.AuthSessionRepository, jwtManager *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{users: users, sessions: sessions, jwt: jwtManager, logger: logger}
}

// SignupInput represents a new account registration
type SignupInput struct {
	Email            string
	Password         string
	Name             string
	ParentalRole     entities.ParentalRole
	Language         string
	OtherParentEmail *string
	PhoneNumber      *string
	Timezone         *string
}

// Signup registers a new parent account
func (s *Service) Signup(ctx context.Context, input SignupInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.ErrValidation("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.ErrValidation("password must be at least 8 characters")
	}
	if !input.ParentalRole.IsValid() {
		return nil, apperrors.ErrValidation("parental role must be Father or Mother")
	}

	language := input.Language
	if language == "" {
		language = "en"
	}
	if !moderation.IsSupportedLanguage(language) {
		return nil, apperrors.ErrValidation("unsupported language")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrUserAlreadyExists(email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	hashStr := string(hash)

	timezone := "UTC"
	if input.Timezone != nil && strings.TrimSpace(*input.Timezone) != "" {
		timezone = strings.TrimSpace(*input.Timezone)
	}

	user := &entities.User{
		Email:            email,
		Name:             input.Name,
		PasswordHash:     &hashStr,
		ParentalRole:     input.ParentalRole,
		IsActive:         true,
		Language:         language,
		OtherParentEmail: input.OtherParentEmail,
		PhoneNumber:      input.PhoneNumber,
		Timezone:         timezone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create user", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.ParentalRole)))
	return user, nil
}

// SigninOutput carries the issued token and the signed-in user
type SigninOutput struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *entities.User
}

// Signin verifies credentials and issues an access token. The token is also
// tracked as a revocable session row.
func (s *Service) Signin(ctx context.Context, email, password string) (*SigninOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials()
		}
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}

	if !user.IsActive || user.PasswordHash == nil {
		return nil, apperrors.ErrInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials()
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Name, string(user.ParentalRole), user.Language)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	session := entities.NewAuthSession(user.ID, token, time.Now().Add(sessionLifetime))
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create auth session", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}

	s.logger.Info("user signed in", zap.String("user_id", user.ID.String()))
	return &SigninOutput{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		User:        user,
	}, nil
}

// Signout revokes the session behind the given token
func (s *Service) Signout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperrors.ErrDBQueryFailed("revoke auth session", err)
	}
	return nil
}

// Resolve validates a bearer token and loads the current user. The token
// must both verify cryptographically and map to a live session row.
func (s *Service) Resolve(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken()
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken()
		}
		return nil, apperrors.ErrDBQueryFailed("find auth session", err)
	}
	if !session.IsValid() {
		return nil, apperrors.ErrInvalidToken()
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken()
		}
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidToken()
	}

	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		s.logger.Warn("failed to touch auth session", zap.Error(err))
	}
	return user, nil
}
