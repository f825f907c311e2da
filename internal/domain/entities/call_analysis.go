package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Safety score bounds for post-call analysis.
const (
	MinSafetyScore = 1
	MaxSafetyScore = 10
)

// CallAnalysis is the stored outcome of post-call AI analysis for a session
type CallAnalysis struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`

	Summary          string         `json:"summary" gorm:"type:text;not null"`
	ContentAnalysis  string         `json:"content_analysis" gorm:"type:text"`
	SafetyAssessment string         `json:"safety_assessment" gorm:"type:text"`
	SafetyScore      int            `json:"safety_score" gorm:"not null;check:safety_score >= 1 AND safety_score <= 10"`

	ViolationsDetected bool           `json:"violations_detected" gorm:"not null;default:false"`
	ViolationDetails   datatypes.JSON `json:"violation_details,omitempty" gorm:"type:jsonb"`
	Recommendations    datatypes.JSON `json:"recommendations,omitempty" gorm:"type:jsonb"`
	KeyTopics          datatypes.JSON `json:"key_topics,omitempty" gorm:"type:jsonb"`
	CommunicationTone  string         `json:"communication_tone" gorm:"type:varchar(100)"`
	Concerns           datatypes.JSON `json:"concerns,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for CallAnalysis
func (CallAnalysis) TableName() string {
	return "call_analyses"
}

// ClampSafetyScore forces a score into the valid range.
func ClampSafetyScore(score int) int {
	if score < MinSafetyScore {
		return MinSafetyScore
	}
	if score > MaxSafetyScore {
		return MaxSafetyScore
	}
	return score
}
