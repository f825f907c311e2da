package entities

import (
	"time"

	"github.com/google/uuid"
)

// SystemSpeaker labels segments synthesized by the platform itself.
const SystemSpeaker = "SYSTEM"

// TranscriptSegment is a single utterance captured during an active session
type TranscriptSegment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index"`

	Speaker    string  `json:"speaker" gorm:"type:varchar(255);not null"`
	Text       string  `json:"text" gorm:"type:text;not null"`
	Confidence float64 `json:"confidence" gorm:"not null;default:0"`
	IsFinal    bool    `json:"is_final" gorm:"not null;default:false"`

	ViolationDetected bool    `json:"violation_detected" gorm:"not null;default:false"`
	AnalysisNote      *string `json:"analysis_note,omitempty" gorm:"type:varchar(255)"`

	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for TranscriptSegment
func (TranscriptSegment) TableName() string {
	return "transcript_segments"
}
