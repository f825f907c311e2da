package auth

import "time"

// SignupRequest represents a registration request
type SignupRequest struct {
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required,min=8"`
	Name             string  `json:"name" validate:"required"`
	ParentalRole     string  `json:"parental_role" validate:"required,oneof=Father Mother"`
	Language         string  `json:"language" validate:"omitempty,len=2"`
	OtherParentEmail *string `json:"other_parent_email" validate:"omitempty,email"`
	PhoneNumber      *string `json:"phone_number"`
	Timezone         *string `json:"timezone"`
}

// SigninRequest represents a login request
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	ParentalRole string `json:"parental_role"`
	Language     string `json:"language"`
}

// SigninResponse carries the issued access token
type SigninResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}
