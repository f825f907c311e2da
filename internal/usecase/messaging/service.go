package messaging

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
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
	"github.com/accordfamily/accord-backend/internal/usecase/moderation"
)

// Normalizer gates and rewrites messages before they are stored
type Normalizer interface {
	Normalize(ctx context.Context, message, orders, senderRole, recipientRole, senderLanguage, recipientLanguage string) (*moderation.Result, error)
}

// OrdersProvider supplies the active court order text
type OrdersProvider interface {
	ActiveOrders(ctx context.Context) (string, error)
}

// Service handles mediated message exchange between the parents
type Service struct {
	messages   repositories.MessageRepository
	users      repositories.UserRepository
	normalizer Normalizer
	orders     OrdersProvider
	notifier   *notification.Dispatcher
	logger     *zap.Logger
}

// NewService creates a new messaging service
func NewService(
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	normalizer Normalizer,
	orders OrdersProvider,
	notifier *notification.Dispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		messages:   messages,
		users:      users,
		normalizer: normalizer,
		orders:     orders,
		notifier:   notifier,
		logger:     logger,
	}
}

// SendInput represents a message submission
type SendInput struct {
	ConversationID uuid.UUID
	Sender         *entities.User
	Text           string
}

// Send evaluates, normalizes and stores a message. Nothing reaches the other
// parent until it has passed through the evaluator, and all versions are
// written in one transaction so a message never exists half-normalized.
func (s *Service) Send(ctx context.Context, input SendInput) (*entities.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.ErrValidation("message text must not be empty")
	}

	if _, err := s.messages.FindConversationByID(ctx, input.ConversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConversationNotFound(input.ConversationID.String())
		}
		return nil, apperrors.ErrDBQueryFailed("find conversation", err)
	}

	senderRole := input.Sender.ParentalRole
	recipientRole := senderRole.Other()
	recipientLanguage, recipientEmail := s.recipientInfo(ctx, input.Sender)

	ordersText, err := s.orders.ActiveOrders(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.normalizer.Normalize(ctx, text, ordersText,
		string(senderRole), string(recipientRole),
		input.Sender.Language, recipientLanguage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &entities.Message{
		ConversationID:    input.ConversationID,
		SenderID:          input.Sender.ID,
		SenderName:        input.Sender.Name,
		SenderEmail:       input.Sender.Email,
		OriginalText:      text,
		SenderRole:        senderRole,
		RecipientRole:     recipientRole,
		SenderLanguage:    input.Sender.Language,
		RecipientLanguage: recipientLanguage,
		NeedsRewrite:      result.NeedsRewrite,
		MessageHash:       entities.ComputeHash(input.Sender.Name, text, now),
		Variants: []entities.MessageVariant{
			{Language: input.Sender.Language, Text: result.SenderVersion},
		},
	}
	if recipientLanguage != input.Sender.Language {
		message.Variants = append(message.Variants, entities.MessageVariant{
			Language: recipientLanguage,
			Text:     result.RecipientVersion,
		})
	}

	if err := s.messages.CreateWithVariants(ctx, message); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create message", err)
	}

	if recipientEmail != "" {
		s.notifier.Dispatch(ctx, &entities.Notification{
			RecipientEmail: recipientEmail,
			Type:           entities.NotificationNewMessage,
			Title:          fmt.Sprintf("New message from %s", input.Sender.Name),
			Body:           result.RecipientVersion,
			ReferenceID:    &message.ID,
		})
	}

	s.logger.Info("message sent",
		zap.String("message_id", message.ID.String()),
		zap.String("conversation_id", input.ConversationID.String()),
		zap.Bool("needs_rewrite", result.NeedsRewrite))
	return message, nil
}

// recipientInfo resolves the other parent's language and email, defaulting
// to English when the other parent has no account yet.
func (s *Service) recipientInfo(ctx context.Context, sender *entities.User) (string, string) {
	if sender.OtherParentEmail == nil || *sender.OtherParentEmail == "" {
		return "en", ""
	}

	other, err := s.users.FindByEmail(ctx, *sender.OtherParentEmail)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to resolve other parent", zap.Error(err))
		}
		return "en", *sender.OtherParentEmail
	}
	return other.Language, other.Email
}

// MessageView is a message as seen by one viewer, in their language
type MessageView struct {
	ID           uuid.UUID             `json:"id"`
	SenderName   string                `json:"sender_name"`
	SenderRole   entities.ParentalRole `json:"sender_role"`
	Text         string                `json:"text"`
	OriginalText string                `json:"original_text,omitempty"`
	NeedsRewrite bool                  `json:"needs_rewrite"`
	IsRead       bool                  `json:"is_read"`
	CreatedAt    time.Time             `json:"created_at"`
}

// List retrieves the conversation as the viewer should see it. Each message
// resolves to the variant in the viewer's language; the sender additionally
// sees their original wording.
func (s *Service) List(ctx context.Context, conversationID uuid.UUID, viewer *entities.User, limit, offset int) ([]*MessageView, error) {
	messages, err := s.messages.ListByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list messages", err)
	}

	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		view := &MessageView{
			ID:           m.ID,
			SenderName:   m.SenderName,
			SenderRole:   m.SenderRole,
			Text:         m.TextFor(viewer.Language),
			NeedsRewrite: m.NeedsRewrite,
			IsRead:       m.IsRead,
			CreatedAt:    m.CreatedAt,
		}
		if m.SenderID == viewer.ID {
			view.OriginalText = m.OriginalText
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateConversation starts a new conversation thread
func (s *Service) CreateConversation(ctx context.Context, title string) (*entities.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrValidation("conversation title must not be empty")
	}

	conversation := &entities.Conversation{Title: title}
	if err := s.messages.CreateConversation(ctx, conversation); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create conversation", err)
	}
	return conversation, nil
}

// ListConversations retrieves all conversations, most recent first
func (s *Service) ListConversations(ctx context.Context) ([]*entities.Conversation, error) {
	conversations, err := s.messages.ListConversations(ctx)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list conversations", err)
	}
	return conversations, nil
}

// MarkRead records that the viewer has read a message
func (s *Service) MarkRead(ctx context.Context, messageID uuid.UUID, viewer *entities.User) error {
	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound("message")
		}
		return apperrors.ErrDBQueryFailed("find message", err)
	}

	if message.SenderID == viewer.ID {
		return apperrors.ErrPermissionDenied("mark own message as read")
	}

	if err := s.messages.MarkRead(ctx, messageID, viewer.Email); err != nil {
		return apperrors.ErrDBQueryFailed("mark message read", err)
	}
	return nil
}

// CountUnread counts messages the viewer has not read yet
func (s *Service) CountUnread(ctx context.Context, conversationID uuid.UUID, viewer *entities.User) (int64, error) {
	count, err := s.messages.CountUnread(ctx, conversationID, viewer.ParentalRole)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("count unread messages", err)
	}
	return count, nil
}
