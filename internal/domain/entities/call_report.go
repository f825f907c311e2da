package entities

import (
	"time"

	"github.com/google/uuid"
)

// CallReport is a manual incident report filed by a participant during a call
type CallReport struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index"`

	ReporterEmail string `json:"reporter_email" gorm:"type:varchar(255);not null"`
	ReporterName  string `json:"reporter_name" gorm:"type:varchar(255);not null"`

	ReportType  string  `json:"report_type" gorm:"type:varchar(50);not null"`
	Reason      string  `json:"reason" gorm:"type:varchar(255);not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	Severity    string  `json:"severity" gorm:"type:varchar(20);not null;default:'medium'"`

	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for CallReport
func (CallReport) TableName() string {
	return "call_reports"
}
