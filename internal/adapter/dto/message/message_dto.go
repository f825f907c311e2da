package message

// CreateConversationRequest represents a new conversation
type CreateConversationRequest struct {
	Title string `json:"title" validate:"required"`
}

// SendMessageRequest represents a message submission
type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// UnreadResponse reports the viewer's unread message count
type UnreadResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
