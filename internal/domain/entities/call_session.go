package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the state of a live call session
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusWaiting   SessionStatus = "waiting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusEnded     SessionStatus = "ended"
)

// CallParty identifies which side of the call a user is on
type CallParty string

const (
	PartyCaller    CallParty = "caller"
	PartyRecipient CallParty = "recipient"
)

// CallSession tracks the live lifecycle of an accepted scheduled call
type CallSession struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ScheduledCallID uuid.UUID `json:"scheduled_call_id" gorm:"type:uuid;not null;uniqueIndex"`
	SessionToken    string    `json:"-" gorm:"type:varchar(64);not null;uniqueIndex"`

	Status            SessionStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled';index"`
	CallerJoinedAt    *time.Time    `json:"caller_joined_at,omitempty" gorm:"type:timestamp"`
	RecipientJoinedAt *time.Time    `json:"recipient_joined_at,omitempty" gorm:"type:timestamp"`

	StartedAt       *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	EndedAt         *time.Time `json:"ended_at,omitempty" gorm:"type:timestamp"`
	EndedBy         *string    `json:"ended_by,omitempty" gorm:"type:varchar(255)"`
	EndReason       *string    `json:"end_reason,omitempty" gorm:"type:varchar(100)"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CallSession
func (CallSession) TableName() string {
	return "call_sessions"
}

// JoinedAt returns the join timestamp recorded for the given party.
func (s *CallSession) JoinedAt(party CallParty) *time.Time {
	if party == PartyCaller {
		return s.CallerJoinedAt
	}
	return s.RecipientJoinedAt
}

// BothJoined reports whether both parties have a recorded join.
func (s *CallSession) BothJoined() bool {
	return s.CallerJoinedAt != nil && s.RecipientJoinedAt != nil
}

// IsActive reports whether the session is currently live.
func (s *CallSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// Duration computes the elapsed seconds between start and end.
func (s *CallSession) Duration() int {
	if s.StartedAt == nil || s.EndedAt == nil {
		return 0
	}
	return int(s.EndedAt.Sub(*s.StartedAt).Seconds())
}
