package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ParentalRole identifies which parent a user is within a relationship.
type ParentalRole string

const (
	ParentalRoleFather ParentalRole = "Father"
	ParentalRoleMother ParentalRole = "Mother"
)

// IsValid checks if the parental role is valid
func (r ParentalRole) IsValid() bool {
	return r == ParentalRoleFather || r == ParentalRoleMother
}

// Other returns the counterpart role.
func (r ParentalRole) Other() ParentalRole {
	if r == ParentalRoleFather {
		return ParentalRoleMother
	}
	return ParentalRoleFather
}

// User represents a parent account
type User struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string       `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string       `json:"name" gorm:"type:varchar(255);not null"`
	PasswordHash *string      `json:"-" gorm:"column:password_hash;type:text"` // Never expose in JSON
	ParentalRole ParentalRole `json:"parental_role" gorm:"type:varchar(20);not null"`
	IsActive     bool         `json:"is_active" gorm:"default:true;not null"`

	// Profile
	PreferredName *string `json:"preferred_name,omitempty" gorm:"type:varchar(255)"`
	PhoneNumber   *string `json:"phone_number,omitempty" gorm:"type:varchar(50)"`
	Timezone      string  `json:"timezone" gorm:"type:varchar(50);default:'UTC';not null"`
	Language      string  `json:"language" gorm:"type:varchar(10);default:'en';not null"`

	// The other parent in this relationship
	OtherParentEmail *string `json:"other_parent_email,omitempty" gorm:"type:varchar(255);index"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`

	NotificationPreferences datatypes.JSON `json:"notification_preferences" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
