package call

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleCallRequest represents a new call invitation
type ScheduleCallRequest struct {
	RecipientName   string  `json:"recipient_name" validate:"required"`
	RecipientEmail  string  `json:"recipient_email" validate:"required,email"`
	ScheduledDate   string  `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime   string  `json:"scheduled_time" validate:"required,datetime=15:04"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=5,max=60"`
	Notes           *string `json:"notes"`
}

// RespondRequest accepts or rejects a pending invitation
type RespondRequest struct {
	Response string `json:"response" validate:"required,oneof=accepted rejected"`
}

// RespondResponse reports the recorded decision
type RespondResponse struct {
	CallID       uuid.UUID `json:"call_id"`
	Status       string    `json:"status"`
	SessionToken string    `json:"session_token,omitempty"`
}

// JoinResponse describes the session state after a join
type JoinResponse struct {
	SessionID       uuid.UUID `json:"session_id"`
	SessionToken    string    `json:"session_token"`
	Party           string    `json:"party"`
	Status          string    `json:"status"`
	BothJoined      bool      `json:"both_joined"`
	CallActive      bool      `json:"call_active"`
	ScheduledDate   string    `json:"scheduled_date"`
	ScheduledTime   string    `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// TranscriptionRequest represents one live utterance
type TranscriptionRequest struct {
	Text       string  `json:"text" validate:"required"`
	Confidence float64 `json:"confidence" validate:"omitempty,min=0,max=1"`
	IsFinal    bool    `json:"is_final"`
}

// TranscriptionResponse reports the moderation outcome for an utterance
type TranscriptionResponse struct {
	ViolationDetected bool   `json:"violation_detected"`
	CallEnded         bool   `json:"call_ended"`
	Message           string `json:"message"`
}

// ReportViolationRequest represents a manual violation report
type ReportViolationRequest struct {
	ReportType  string  `json:"report_type" validate:"required"`
	Reason      string  `json:"reason" validate:"required"`
	Description *string `json:"description"`
}

// EndCallRequest carries the reason a party hung up
type EndCallRequest struct {
	Reason string `json:"reason"`
}

// EndCallResponse reports the final session accounting
type EndCallResponse struct {
	SessionID         uuid.UUID `json:"session_id"`
	DurationSeconds   int       `json:"duration_seconds"`
	AnalysisCompleted bool      `json:"analysis_completed"`
}

// SegmentResponse is one transcript entry
type SegmentResponse struct {
	ID                uuid.UUID `json:"id"`
	Speaker           string    `json:"speaker"`
	Text              string    `json:"text"`
	Confidence        float64   `json:"confidence"`
	IsFinal           bool      `json:"is_final"`
	ViolationDetected bool      `json:"violation_detected"`
	AnalysisNote      *string   `json:"analysis_note,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}
