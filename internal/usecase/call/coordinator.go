package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
)

// SessionAnalyzer produces the post-call analysis once a session ends
type SessionAnalyzer interface {
	AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (*entities.CallAnalysis, error)
}

// Coordinator synchronizes the two parties through the live session
// lifecycle. All state transitions go through conditional updates so that
// simultaneous joins or ends resolve to a single winner.
type Coordinator struct {
	calls    repositories.ScheduledCallRepository
	sessions repositories.CallSessionRepository
	analyzer SessionAnalyzer
	notifier *notification.Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewCoordinator creates a new call session coordinator
func NewCoordinator(
	calls repositories.ScheduledCallRepository,
	sessions repositories.CallSessionRepository,
	analyzer SessionAnalyzer,
	notifier *notification.Dispatcher,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		calls:    calls,
		sessions: sessions,
		analyzer: analyzer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// JoinOutput is the result of a party joining the call
type JoinOutput struct {
	Session         *entities.CallSession
	SessionToken    string
	Party           entities.CallParty
	BothJoined      bool
	CallActive      bool
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
}

// Join records a party's arrival at the call. The call must have been
// accepted and the clock must be inside the join window, from five minutes
// before the scheduled start until the booked end. The second arrival
// activates the session; repeated joins by the same party are no-ops.
func (c *Coordinator) Join(ctx context.Context, callID uuid.UUID, user *entities.User) (*JoinOutput, error) {
	call, err := c.calls.FindByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCallNotFound(callID.String())
		}
		return nil, apperrors.ErrDBQueryFailed("find scheduled call", err)
	}

	if !call.IsParty(user.Email) {
		return nil, apperrors.ErrNotCallParty(callID.String())
	}
	if call.Status != entities.CallStatusAccepted {
		return nil, apperrors.ErrStateConflict("join", callID.String(), "call has not been accepted yet")
	}

	start, err := call.ScheduledStart()
	if err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("malformed schedule on call %s: %w", callID, err))
	}
	now := c.now()
	if now.Before(start.Add(-entities.JoinGracePeriod)) {
		return nil, apperrors.ErrStateConflict("join", callID.String(), "call is not ready to join yet")
	}
	if now.After(start.Add(time.Duration(call.DurationMinutes) * time.Minute)) {
		return nil, apperrors.ErrStateConflict("join", callID.String(), "call time has expired")
	}

	session, err := c.sessions.FindByScheduledCallID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound(callID.String())
		}
		return nil, apperrors.ErrDBQueryFailed("find call session", err)
	}

	party := entities.PartyRecipient
	if call.IsCaller(user.Email) {
		party = entities.PartyCaller
	}

	if err := c.sessions.RecordJoin(ctx, session.ID, party, now); err != nil {
		return nil, apperrors.ErrDBQueryFailed("record join", err)
	}

	session, err = c.sessions.FindByID(ctx, session.ID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("reload call session", err)
	}

	if session.BothJoined() && session.Status == entities.SessionStatusWaiting {
		if _, err := c.sessions.ActivateIfBothJoined(ctx, session.ID, c.now()); err != nil {
			return nil, apperrors.ErrDBQueryFailed("activate call session", err)
		}
		session, err = c.sessions.FindByID(ctx, session.ID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("reload call session", err)
		}
	}

	c.logger.Info("party joined call",
		zap.String("session_id", session.ID.String()),
		zap.String("party", string(party)),
		zap.Bool("call_active", session.IsActive()))

	return &JoinOutput{
		Session:         session,
		SessionToken:    session.SessionToken,
		Party:           party,
		BothJoined:      session.BothJoined(),
		CallActive:      session.IsActive(),
		ScheduledDate:   call.ScheduledDate,
		ScheduledTime:   call.ScheduledTime,
		DurationMinutes: call.DurationMinutes,
	}, nil
}

// EndOutput is the result of ending a call
type EndOutput struct {
	DurationSeconds   int
	AnalysisCompleted bool
	Analysis          *entities.CallAnalysis
}

// End terminates an active session. Either party may end the call; the
// conditional update guarantees exactly one request wins when both hang up
// together, and only the winner runs the post-call analysis.
func (c *Coordinator) End(ctx context.Context, sessionID uuid.UUID, user *entities.User, reason string) (*EndOutput, error) {
	session, call, err := c.sessionWithCall(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !call.IsParty(user.Email) {
		return nil, apperrors.ErrNotCallParty(sessionID.String())
	}
	if !session.IsActive() {
		return nil, apperrors.ErrStateConflict("end", sessionID.String(), "call is not active")
	}

	now := c.now()
	duration := 0
	if session.StartedAt != nil {
		duration = int(now.Sub(*session.StartedAt).Seconds())
	}

	ended, err := c.sessions.EndActive(ctx, sessionID, user.Name, reason, now, duration)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("end call session", err)
	}
	if !ended {
		return nil, apperrors.ErrStateConflict("end", sessionID.String(), "call is not active")
	}

	if err := c.calls.Complete(ctx, call.ID, now); err != nil {
		return nil, apperrors.ErrDBQueryFailed("complete scheduled call", err)
	}

	otherEmail := call.RecipientEmail
	if !call.IsCaller(user.Email) {
		otherEmail = call.CallerEmail
	}
	c.notifier.Dispatch(ctx, &entities.Notification{
		RecipientEmail: otherEmail,
		Type:           entities.NotificationCallEnded,
		Title:          fmt.Sprintf("%s ended the call", user.Name),
		ReferenceID:    &call.ID,
	})

	output := &EndOutput{DurationSeconds: duration}

	analysis, err := c.analyzer.AnalyzeSession(ctx, sessionID)
	if err != nil {
		c.logger.Error("post-call analysis failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	} else if analysis != nil {
		output.AnalysisCompleted = true
		output.Analysis = analysis
	}

	c.logger.Info("call ended",
		zap.String("session_id", sessionID.String()),
		zap.String("ended_by", user.Email),
		zap.Int("duration_seconds", duration),
		zap.Bool("analysis_completed", output.AnalysisCompleted))
	return output, nil
}

func (c *Coordinator) sessionWithCall(ctx context.Context, sessionID uuid.UUID) (*entities.CallSession, *entities.ScheduledCall, error) {
	return loadSessionWithCall(ctx, c.sessions, c.calls, sessionID)
}

// loadSessionWithCall loads a session together with its scheduled call.
func loadSessionWithCall(
	ctx context.Context,
	sessions repositories.CallSessionRepository,
	calls repositories.ScheduledCallRepository,
	sessionID uuid.UUID,
) (*entities.CallSession, *entities.ScheduledCall, error) {
	session, err := sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrSessionNotFound(sessionID.String())
		}
		return nil, nil, apperrors.ErrDBQueryFailed("find call session", err)
	}

	call, err := calls.FindByID(ctx, session.ScheduledCallID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("find scheduled call", err)
	}
	return session, call, nil
}
