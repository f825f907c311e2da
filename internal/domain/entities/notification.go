package entities

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the kind of event being notified
type NotificationType string

const (
	NotificationNewMessage    NotificationType = "new_message"
	NotificationCallScheduled NotificationType = "call_scheduled"
	NotificationCallAccepted  NotificationType = "call_accepted"
	NotificationCallRejected  NotificationType = "call_rejected"
	NotificationCallEnded     NotificationType = "call_ended"
)

// Notification is a delivered or pending notification for a user
type Notification struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientEmail string           `json:"recipient_email" gorm:"type:varchar(255);not null;index"`
	Type           NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	Title          string           `json:"title" gorm:"type:varchar(255);not null"`
	Body           string           `json:"body" gorm:"type:text"`
	ReferenceID    *uuid.UUID       `json:"reference_id,omitempty" gorm:"type:uuid"`
	ReadAt         *time.Time       `json:"read_at,omitempty" gorm:"type:timestamp"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
