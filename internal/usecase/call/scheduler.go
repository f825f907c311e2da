package call

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
)

// Scheduler handles call invitations and their accept/reject lifecycle
type Scheduler struct {
	calls    repositories.ScheduledCallRepository
	notifier *notification.Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new call scheduler
func NewScheduler(
	calls repositories.ScheduledCallRepository,
	notifier *notification.Dispatcher,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		calls:    calls,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ScheduleInput represents a new call invitation
type ScheduleInput struct {
	Caller          *entities.User
	RecipientName   string
	RecipientEmail  string
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	Notes           *string
}

// Schedule creates a pending call invitation for the other parent
func (s *Scheduler) Schedule(ctx context.Context, input ScheduleInput) (*entities.ScheduledCall, error) {
	if input.DurationMinutes < entities.MinCallDurationMinutes || input.DurationMinutes > entities.MaxCallDurationMinutes {
		return nil, apperrors.ErrValidation(fmt.Sprintf("call duration must be between %d and %d minutes",
			entities.MinCallDurationMinutes, entities.MaxCallDurationMinutes))
	}

	start, err := time.ParseInLocation("2006-01-02 15:04",
		fmt.Sprintf("%s %s", input.ScheduledDate, input.ScheduledTime), time.Local)
	if err != nil {
		return nil, apperrors.ErrValidation("invalid scheduled date or time")
	}
	if !start.After(s.now()) {
		return nil, apperrors.ErrValidation("scheduled time must be in the future")
	}

	if strings.TrimSpace(input.RecipientEmail) == "" {
		return nil, apperrors.ErrValidation("recipient email is required")
	}

	call := &entities.ScheduledCall{
		CallerID:        input.Caller.ID,
		CallerName:      input.Caller.Name,
		CallerEmail:     input.Caller.Email,
		RecipientName:   input.RecipientName,
		RecipientEmail:  input.RecipientEmail,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
		Status:          entities.CallStatusPending,
	}

	if err := s.calls.Create(ctx, call); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create scheduled call", err)
	}

	s.notifier.Dispatch(ctx, &entities.Notification{
		RecipientEmail: input.RecipientEmail,
		Type:           entities.NotificationCallScheduled,
		Title:          fmt.Sprintf("%s scheduled a call with you", input.Caller.Name),
		Body: fmt.Sprintf("Proposed for %s at %s (%d minutes)",
			input.ScheduledDate, input.ScheduledTime, input.DurationMinutes),
		ReferenceID: &call.ID,
	})

	s.logger.Info("call scheduled",
		zap.String("call_id", call.ID.String()),
		zap.String("caller", input.Caller.Email),
		zap.String("recipient", input.RecipientEmail))
	return call, nil
}

// RespondOutput is the result of accepting or rejecting an invitation
type RespondOutput struct {
	Call         *entities.ScheduledCall
	SessionToken string
}

// Respond accepts or rejects a pending invitation. Only the invited parent
// may respond, and only once: a losing concurrent responder gets a state
// conflict rather than silently overwriting the winner's decision.
func (s *Scheduler) Respond(ctx context.Context, callID uuid.UUID, responder *entities.User, accept bool) (*RespondOutput, error) {
	call, err := s.findCall(ctx, callID)
	if err != nil {
		return nil, err
	}

	if call.RecipientEmail != responder.Email {
		return nil, apperrors.ErrPermissionDenied("respond to a call invited to someone else")
	}
	if call.Status != entities.CallStatusPending {
		return nil, apperrors.ErrStateConflict("respond", callID.String(), "call has already been responded to")
	}

	status := entities.CallStatusRejected
	notifType := entities.NotificationCallRejected
	if accept {
		status = entities.CallStatusAccepted
		notifType = entities.NotificationCallAccepted
	}

	output := &RespondOutput{Call: call}

	if accept {
		// Accepting a call and minting its session must commit together:
		// an accepted call without a session token could never be joined.
		token, err := newSessionToken()
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		session := &entities.CallSession{
			ScheduledCallID: callID,
			SessionToken:    token,
			Status:          entities.SessionStatusScheduled,
		}
		applied, err := s.calls.AcceptAndCreateSession(ctx, callID, session, s.now())
		if err != nil {
			return nil, apperrors.ErrDBTransactionFailed(err)
		}
		if !applied {
			return nil, apperrors.ErrStateConflict("respond", callID.String(), "call has already been responded to")
		}
		output.SessionToken = token
	} else {
		applied, err := s.calls.RespondIfPending(ctx, callID, status, s.now())
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("respond to call", err)
		}
		if !applied {
			return nil, apperrors.ErrStateConflict("respond", callID.String(), "call has already been responded to")
		}
	}

	call.Status = status

	s.notifier.Dispatch(ctx, &entities.Notification{
		RecipientEmail: call.CallerEmail,
		Type:           notifType,
		Title:          fmt.Sprintf("%s responded to your call invitation", responder.Name),
		ReferenceID:    &call.ID,
	})

	s.logger.Info("call invitation answered",
		zap.String("call_id", callID.String()),
		zap.String("status", string(status)))
	return output, nil
}

// ListPending retrieves pending invitations addressed to the user
func (s *Scheduler) ListPending(ctx context.Context, user *entities.User) ([]*entities.ScheduledCall, error) {
	calls, err := s.calls.ListPendingFor(ctx, user.Email)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list pending calls", err)
	}
	return calls, nil
}

// ListScheduled retrieves every call the user participates in
func (s *Scheduler) ListScheduled(ctx context.Context, user *entities.User, limit, offset int) ([]*entities.ScheduledCall, error) {
	calls, err := s.calls.ListFor(ctx, user.Email, limit, offset)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list scheduled calls", err)
	}
	return calls, nil
}

func (s *Scheduler) findCall(ctx context.Context, callID uuid.UUID) (*entities.ScheduledCall, error) {
	call, err := s.calls.FindByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCallNotFound(callID.String())
		}
		return nil, apperrors.ErrDBQueryFailed("find scheduled call", err)
	}
	return call, nil
}

// newSessionToken generates a single-use URL-safe session token.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
