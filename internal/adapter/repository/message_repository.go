package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// messageRepository implements the MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) repositories.MessageRepository {
	return &messageRepository{db: db}
}

// CreateConversation creates a new conversation
func (r *messageRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// FindConversationByID retrieves a conversation by ID
func (r *messageRepository) FindConversationByID(ctx context.Context, id uuid.UUID) (*entities.Conversation, error) {
	var conversation entities.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&conversation).Error

	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListConversations retrieves all conversations, most recent first
func (r *messageRepository) ListConversations(ctx context.Context) ([]*entities.Conversation, error) {
	var conversations []*entities.Conversation
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&conversations).Error

	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateWithVariants atomically persists a message with all its language variants
func (r *messageRepository) CreateWithVariants(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", time.Now()).Error
	})
}

// FindByID retrieves a message with its variants preloaded
func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Message, error) {
	var message entities.Message
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", id).
		First(&message).Error

	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByConversation retrieves messages in a conversation in send order
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entities.Message, error) {
	var messages []*entities.Message
	query := r.db.WithContext(ctx).
		Preload("Variants").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead records a read receipt on a message
func (r *messageRepository) MarkRead(ctx context.Context, id uuid.UUID, readerEmail string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
			"read_by": readerEmail,
		}).Error
}

// CountUnread counts unread messages addressed to the given role
func (r *messageRepository) CountUnread(ctx context.Context, conversationID uuid.UUID, recipientRole entities.ParentalRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ? AND recipient_role = ? AND is_read = ?", conversationID, recipientRole, false).
		Count(&count).Error

	if err != nil {
		return 0, err
	}
	return count, nil
}
