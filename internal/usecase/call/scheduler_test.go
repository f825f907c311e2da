package call

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
)

func newTestScheduler(calls *fakeCallRepo, sessions *fakeSessionRepo, notifRepo *fakeNotificationRepo) *Scheduler {
	calls.sessionStore = sessions
	return NewScheduler(calls, testDispatcher(notifRepo), zap.NewNop())
}

func scheduleInput(caller, recipient *entities.User) ScheduleInput {
	start := time.Now().Add(24 * time.Hour)
	return ScheduleInput{
		Caller:          caller,
		RecipientName:   recipient.Name,
		RecipientEmail:  recipient.Email,
		ScheduledDate:   start.Format("2006-01-02"),
		ScheduledTime:   start.Format("15:04"),
		DurationMinutes: 30,
	}
}

func TestSchedule_CreatesPendingInvitation(t *testing.T) {
	father, mother := testParents()
	calls := newFakeCallRepo()
	notifRepo := &fakeNotificationRepo{}
	scheduler := newTestScheduler(calls, newFakeSessionRepo(), notifRepo)

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	assert.Equal(t, entities.CallStatusPending, call.Status)
	assert.Equal(t, father.Email, call.CallerEmail)
	assert.Equal(t, mother.Email, call.RecipientEmail)

	pending, err := scheduler.ListPending(context.Background(), mother)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, entities.NotificationCallScheduled, notifRepo.created[0].Type)
	assert.Equal(t, mother.Email, notifRepo.created[0].RecipientEmail)
}

func TestSchedule_RejectsBadDuration(t *testing.T) {
	father, mother := testParents()
	scheduler := newTestScheduler(newFakeCallRepo(), newFakeSessionRepo(), &fakeNotificationRepo{})

	for _, duration := range []int{0, 4, 61, 120} {
		input := scheduleInput(father, mother)
		input.DurationMinutes = duration
		_, err := scheduler.Schedule(context.Background(), input)
		require.Error(t, err, "duration %d", duration)
		assert.Equal(t, apperrors.ErrorCode_VALIDATION_FAILED, apperrors.CodeOf(err))
	}
}

func TestSchedule_RejectsPastTime(t *testing.T) {
	father, mother := testParents()
	scheduler := newTestScheduler(newFakeCallRepo(), newFakeSessionRepo(), &fakeNotificationRepo{})

	past := time.Now().Add(-1 * time.Hour)
	input := scheduleInput(father, mother)
	input.ScheduledDate = past.Format("2006-01-02")
	input.ScheduledTime = past.Format("15:04")

	_, err := scheduler.Schedule(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_VALIDATION_FAILED, apperrors.CodeOf(err))
}

func TestRespond_AcceptCreatesSessionWithToken(t *testing.T) {
	father, mother := testParents()
	calls := newFakeCallRepo()
	sessions := newFakeSessionRepo()
	notifRepo := &fakeNotificationRepo{}
	scheduler := newTestScheduler(calls, sessions, notifRepo)

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	output, err := scheduler.Respond(context.Background(), call.ID, mother, true)
	require.NoError(t, err)
	assert.NotEmpty(t, output.SessionToken)

	updated, err := calls.FindByID(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusAccepted, updated.Status)
	assert.NotNil(t, updated.AcceptedAt)

	session, err := sessions.FindByScheduledCallID(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, output.SessionToken, session.SessionToken)
	assert.Equal(t, entities.SessionStatusScheduled, session.Status)

	// scheduled + accepted notifications
	require.Len(t, notifRepo.created, 2)
	assert.Equal(t, entities.NotificationCallAccepted, notifRepo.created[1].Type)
	assert.Equal(t, father.Email, notifRepo.created[1].RecipientEmail)
}

func TestRespond_RejectLeavesNoSession(t *testing.T) {
	father, mother := testParents()
	calls := newFakeCallRepo()
	sessions := newFakeSessionRepo()
	scheduler := newTestScheduler(calls, sessions, &fakeNotificationRepo{})

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	output, err := scheduler.Respond(context.Background(), call.ID, mother, false)
	require.NoError(t, err)
	assert.Empty(t, output.SessionToken)

	updated, err := calls.FindByID(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusRejected, updated.Status)

	_, err = sessions.FindByScheduledCallID(context.Background(), call.ID)
	require.Error(t, err)
}

func TestRespond_OnlyRecipientMayRespond(t *testing.T) {
	father, mother := testParents()
	scheduler := newTestScheduler(newFakeCallRepo(), newFakeSessionRepo(), &fakeNotificationRepo{})

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	_, err = scheduler.Respond(context.Background(), call.ID, father, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_PERMISSION_DENIED, apperrors.CodeOf(err))
}

func TestRespond_SecondResponseConflicts(t *testing.T) {
	father, mother := testParents()
	scheduler := newTestScheduler(newFakeCallRepo(), newFakeSessionRepo(), &fakeNotificationRepo{})

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	_, err = scheduler.Respond(context.Background(), call.ID, mother, true)
	require.NoError(t, err)

	_, err = scheduler.Respond(context.Background(), call.ID, mother, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_STATE_CONFLICT, apperrors.CodeOf(err))
}

func TestRespond_AcceptFailureLeavesCallPending(t *testing.T) {
	father, mother := testParents()
	calls := newFakeCallRepo()
	sessions := newFakeSessionRepo()
	scheduler := newTestScheduler(calls, sessions, &fakeNotificationRepo{})

	call, err := scheduler.Schedule(context.Background(), scheduleInput(father, mother))
	require.NoError(t, err)

	calls.acceptErr = errors.New("connection reset")
	_, err = scheduler.Respond(context.Background(), call.ID, mother, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_DB_TRANSACTION_FAILED, apperrors.CodeOf(err))

	// the rolled-back accept left nothing behind
	updated, err := calls.FindByID(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusPending, updated.Status)
	_, err = sessions.FindByScheduledCallID(context.Background(), call.ID)
	require.Error(t, err)

	// and the recipient can respond again once the fault clears
	calls.acceptErr = nil
	output, err := scheduler.Respond(context.Background(), call.ID, mother, true)
	require.NoError(t, err)
	assert.NotEmpty(t, output.SessionToken)
}

func TestNewSessionToken_Unique(t *testing.T) {
	a, err := newSessionToken()
	require.NoError(t, err)
	b, err := newSessionToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}
