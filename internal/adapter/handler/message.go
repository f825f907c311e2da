package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/adapter/dto/common"
	messagedto "github.com/accordfamily/accord-backend/internal/adapter/dto/message"
	"github.com/accordfamily/accord-backend/internal/usecase/messaging"
)

// MessageHandler handles conversation and message endpoints
type MessageHandler struct {
	messaging *messaging.Service
	logger    *zap.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messagingService *messaging.Service, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messaging: messagingService, logger: logger}
}

// CreateConversation godoc
// @Summary Create a conversation
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body message.CreateConversationRequest true "Conversation details"
// @Success 201 {object} entities.Conversation
// @Router /v1/conversations [post]
func (h *MessageHandler) CreateConversation(c echo.Context) error {
	var req messagedto.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	conversation, err := h.messaging.CreateConversation(c.Request().Context(), req.Title)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, conversation)
}

// ListConversations godoc
// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entities.Conversation
// @Router /v1/conversations [get]
func (h *MessageHandler) ListConversations(c echo.Context) error {
	conversations, err := h.messaging.ListConversations(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, conversations)
}

// SendMessage godoc
// @Summary Send a message into a conversation
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body message.SendMessageRequest true "Message text"
// @Success 201 {object} entities.Message
// @Router /v1/conversations/{id}/messages [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid conversation id"))
	}

	var req messagedto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	msg, err := h.messaging.Send(c.Request().Context(), messaging.SendInput{
		ConversationID: conversationID,
		Sender:         user,
		Text:           req.Text,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, msg)
}

// ListMessages godoc
// @Summary List messages as seen by the viewer
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} messaging.MessageView
// @Router /v1/conversations/{id}/messages [get]
func (h *MessageHandler) ListMessages(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid conversation id"))
	}

	var query common.ListQuery
	if err := c.Bind(&query); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid query parameters"))
	}
	query.Normalize()

	views, err := h.messaging.List(c.Request().Context(), conversationID, user, query.Limit, query.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, views)
}

// MarkRead godoc
// @Summary Mark a message as read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} map[string]interface{}
// @Router /v1/messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid message id"))
	}

	if err := h.messaging.MarkRead(c.Request().Context(), messageID, user); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, nil)
}

// UnreadCount godoc
// @Summary Count unread messages in a conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} message.UnreadResponse
// @Router /v1/conversations/{id}/unread [get]
func (h *MessageHandler) UnreadCount(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid conversation id"))
	}

	count, err := h.messaging.CountUnread(c.Request().Context(), conversationID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, messagedto.UnreadResponse{UnreadCount: count})
}
