package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// DocumentStore archives the uploaded court order documents
type DocumentStore interface {
	UploadText(ctx context.Context, objectName string, content string) error
	GetDocumentURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// TextCache caches the active order text for the moderation hot path
type TextCache interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, text string) error
	Invalidate(ctx context.Context) error
}

// Service manages the court order policy that gates all communication
type Service struct {
	repo   repositories.PolicyRepository
	store  DocumentStore
	cache  TextCache
	logger *zap.Logger
}

// NewService creates a new policy service
func NewService(repo repositories.PolicyRepository, store DocumentStore, cache TextCache, logger *zap.Logger) *Service {
	return &Service{repo: repo, store: store, cache: cache, logger: logger}
}

// UploadInput represents a new court order upload
type UploadInput struct {
	OrdersText      string
	UploadedByID    uuid.UUID
	UploadedByEmail string
}

// Upload activates a new court order. The raw document is archived in object
// storage, the previous order is deactivated, and the cached text dropped so
// evaluations pick up the new terms immediately.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*entities.Policy, error) {
	text := strings.TrimSpace(input.OrdersText)
	if text == "" {
		return nil, apperrors.ErrValidation("orders text must not be empty")
	}

	objectKey := fmt.Sprintf("orders/%s/%s.txt", time.Now().UTC().Format("2006/01"), uuid.New())
	if err := s.store.UploadText(ctx, objectKey, text); err != nil {
		return nil, apperrors.ErrStorageFailed("upload orders document", err)
	}

	policy := &entities.Policy{
		OrdersText:      text,
		ObjectKey:       &objectKey,
		UploadedByID:    input.UploadedByID,
		UploadedByEmail: input.UploadedByEmail,
	}

	if err := s.repo.Create(ctx, policy); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create policy", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate policy cache", zap.Error(err))
	}

	s.logger.Info("court orders updated",
		zap.String("policy_id", policy.ID.String()),
		zap.String("uploaded_by", input.UploadedByEmail))
	return policy, nil
}

// ActiveOrders returns the text of the active court order. When no order has
// been uploaded yet the empty string is returned and evaluation proceeds on
// the family violence definition alone.
func (s *Service) ActiveOrders(ctx context.Context) (string, error) {
	if text, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn("policy cache read failed", zap.Error(err))
	} else if ok {
		return text, nil
	}

	policy, err := s.repo.FindActive(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.ErrDBQueryFailed("find active policy", err)
	}

	if err := s.cache.Set(ctx, policy.OrdersText); err != nil {
		s.logger.Warn("policy cache write failed", zap.Error(err))
	}
	return policy.OrdersText, nil
}

// ActiveDocumentURL generates a short-lived download link for the archived
// document of the active order.
func (s *Service) ActiveDocumentURL(ctx context.Context, expiry time.Duration) (string, error) {
	policy, err := s.repo.FindActive(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.ErrNotFound("active court order")
	}
	if err != nil {
		return "", apperrors.ErrDBQueryFailed("find active policy", err)
	}
	if policy.ObjectKey == nil {
		return "", apperrors.ErrNotFound("court order document")
	}

	url, err := s.store.GetDocumentURL(ctx, *policy.ObjectKey, expiry)
	if err != nil {
		return "", apperrors.ErrStorageFailed("presign orders document", err)
	}
	return url, nil
}
