package entities

import (
	"time"

	"github.com/google/uuid"
)

// Policy is a set of court order terms governing communication between the parents
type Policy struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrdersText string    `json:"orders_text" gorm:"type:text;not null"`
	ObjectKey  *string   `json:"object_key,omitempty" gorm:"type:varchar(512)"`

	UploadedByID    uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid;not null"`
	UploadedByEmail string    `json:"uploaded_by_email" gorm:"type:varchar(255);not null"`

	IsActive  bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Policy
func (Policy) TableName() string {
	return "policies"
}
