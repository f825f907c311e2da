package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CallStatus represents the lifecycle state of a scheduled call
type CallStatus string

const (
	CallStatusPending   CallStatus = "pending"
	CallStatusAccepted  CallStatus = "accepted"
	CallStatusRejected  CallStatus = "rejected"
	CallStatusCompleted CallStatus = "completed"
)

// Call duration bounds in minutes.
const (
	MinCallDurationMinutes = 5
	MaxCallDurationMinutes = 60
)

// JoinGracePeriod is how early a party may join before the scheduled start.
const JoinGracePeriod = 5 * time.Minute

// ScheduledCall is a call invitation from one parent to the other
type ScheduledCall struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallerID       uuid.UUID `json:"caller_id" gorm:"type:uuid;not null;index"`
	CallerName     string    `json:"caller_name" gorm:"type:varchar(255);not null"`
	CallerEmail    string    `json:"caller_email" gorm:"type:varchar(255);not null;index"`
	RecipientName  string    `json:"recipient_name" gorm:"type:varchar(255);not null"`
	RecipientEmail string    `json:"recipient_email" gorm:"type:varchar(255);not null;index"`

	ScheduledDate   string     `json:"scheduled_date" gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	ScheduledTime   string     `json:"scheduled_time" gorm:"type:varchar(5);not null"`  // HH:MM
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;check:duration_minutes >= 5 AND duration_minutes <= 60"`
	Notes           *string    `json:"notes,omitempty" gorm:"type:text"`
	Status          CallStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty" gorm:"type:timestamp"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ScheduledCall
func (ScheduledCall) TableName() string {
	return "scheduled_calls"
}

// ScheduledStart parses the combined date and time of the call.
func (c *ScheduledCall) ScheduledStart() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04",
		fmt.Sprintf("%s %s", c.ScheduledDate, c.ScheduledTime), time.Local)
}

// ScheduledEnd is the scheduled start plus the booked duration.
func (c *ScheduledCall) ScheduledEnd() (time.Time, error) {
	start, err := c.ScheduledStart()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(c.DurationMinutes) * time.Minute), nil
}

// IsParty checks whether the email belongs to the caller or the recipient.
func (c *ScheduledCall) IsParty(email string) bool {
	return email == c.CallerEmail || email == c.RecipientEmail
}

// IsCaller checks whether the email belongs to the caller.
func (c *ScheduledCall) IsCaller(email string) bool {
	return email == c.CallerEmail
}
