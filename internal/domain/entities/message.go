package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation groups messages between the two parents
type Conversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// Message is one moderated message. The original text and the stored
// rewritten variants are immutable after creation; a correction is a new
// message.
type Message struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID `json:"sender_id" gorm:"type:uuid;not null;index"`
	SenderName     string    `json:"sender_name" gorm:"type:varchar(255);not null"`
	SenderEmail    string    `json:"sender_email" gorm:"type:varchar(255);not null"`

	OriginalText  string       `json:"original_text" gorm:"type:text;not null"`
	SenderRole    ParentalRole `json:"sender_role" gorm:"type:varchar(20);not null"`
	RecipientRole ParentalRole `json:"recipient_role" gorm:"type:varchar(20);not null"`

	SenderLanguage    string `json:"sender_language" gorm:"type:varchar(10);not null;default:'en'"`
	RecipientLanguage string `json:"recipient_language" gorm:"type:varchar(10);not null;default:'en'"`
	NeedsRewrite      bool   `json:"needs_rewrite" gorm:"default:false"`

	// sha256(sender:original:timestamp), for tamper evidence
	MessageHash string `json:"message_hash" gorm:"type:varchar(64);not null"`

	// Read receipts
	IsRead bool       `json:"is_read" gorm:"default:false"`
	ReadAt *time.Time `json:"read_at,omitempty" gorm:"type:timestamp"`
	ReadBy *string    `json:"read_by,omitempty" gorm:"type:varchar(255)"`

	Variants []MessageVariant `json:"variants,omitempty" gorm:"foreignKey:MessageID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}

// ComputeHash derives the integrity hash for a message.
func ComputeHash(senderName, originalText string, at time.Time) string {
	data := fmt.Sprintf("%s:%s:%s", senderName, originalText, at.Format("2006-01-02 15:04:05"))
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// VariantFor selects the stored variant for the given language, falling
// back to the first stored variant when no match exists.
func (m *Message) VariantFor(language string) *MessageVariant {
	for i := range m.Variants {
		if m.Variants[i].Language == language {
			return &m.Variants[i]
		}
	}
	if len(m.Variants) > 0 {
		return &m.Variants[0]
	}
	return nil
}

// TextFor returns the message text as the given language should see it.
func (m *Message) TextFor(language string) string {
	if v := m.VariantFor(language); v != nil {
		return v.Text
	}
	return m.OriginalText
}

// MessageVariant is the per-language rendering of one logical message.
// One or two rows exist per message; never mutated after creation.
type MessageVariant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MessageID uuid.UUID `json:"message_id" gorm:"type:uuid;not null;uniqueIndex:idx_message_language"`
	Language  string    `json:"language" gorm:"type:varchar(10);not null;uniqueIndex:idx_message_language"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for MessageVariant
func (MessageVariant) TableName() string {
	return "message_variants"
}
