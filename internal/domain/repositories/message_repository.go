package repositories

import (
	"context"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/google/uuid"
)

// MessageRepository defines the interface for message and conversation data access
type MessageRepository interface {
	// CreateConversation creates a new conversation
	CreateConversation(ctx context.Context, conversation *entities.Conversation) error

	// FindConversationByID retrieves a conversation by ID
	FindConversationByID(ctx context.Context, id uuid.UUID) (*entities.Conversation, error)

	// ListConversations retrieves all conversations, most recent first
	ListConversations(ctx context.Context) ([]*entities.Conversation, error)

	// CreateWithVariants atomically persists a message with all its language variants
	CreateWithVariants(ctx context.Context, message *entities.Message) error

	// FindByID retrieves a message with its variants preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Message, error)

	// ListByConversation retrieves messages in a conversation in send order
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entities.Message, error)

	// MarkRead records a read receipt on a message
	MarkRead(ctx context.Context, id uuid.UUID, readerEmail string) error

	// CountUnread counts unread messages addressed to the given role
	CountUnread(ctx context.Context, conversationID uuid.UUID, recipientRole entities.ParentalRole) (int64, error)
}
