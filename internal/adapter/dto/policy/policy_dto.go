package policy

import "time"

// UploadOrdersRequest represents a court order upload
type UploadOrdersRequest struct {
	OrdersText string `json:"orders_text" validate:"required"`
}

// OrdersResponse is the active court order text
type OrdersResponse struct {
	OrdersText string     `json:"orders_text"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// DocumentURLResponse carries a presigned link to the archived document
type DocumentURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in_seconds"`
}
