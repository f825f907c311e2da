package call

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
	"github.com/accordfamily/accord-backend/pkg/ai"
	"github.com/accordfamily/accord-backend/pkg/config"
)

type fakeCallRepo struct {
	mu           sync.Mutex
	calls        map[uuid.UUID]*entities.ScheduledCall
	sessionStore *fakeSessionRepo
	acceptErr    error
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{calls: make(map[uuid.UUID]*entities.ScheduledCall)}
}

func (r *fakeCallRepo) Create(_ context.Context, call *entities.ScheduledCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if call.ID == uuid.Nil {
		call.ID = uuid.New()
	}
	if call.Status == "" {
		call.Status = entities.CallStatusPending
	}
	copied := *call
	r.calls[call.ID] = &copied
	return nil
}

func (r *fakeCallRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.ScheduledCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if call, ok := r.calls[id]; ok {
		copied := *call
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCallRepo) ListPendingFor(_ context.Context, email string) ([]*entities.ScheduledCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ScheduledCall
	for _, call := range r.calls {
		if call.RecipientEmail == email && call.Status == entities.CallStatusPending {
			copied := *call
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeCallRepo) ListFor(_ context.Context, email string, _, _ int) ([]*entities.ScheduledCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ScheduledCall
	for _, call := range r.calls {
		if call.CallerEmail == email || call.RecipientEmail == email {
			copied := *call
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeCallRepo) RespondIfPending(_ context.Context, id uuid.UUID, status entities.CallStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[id]
	if !ok || call.Status != entities.CallStatusPending {
		return false, nil
	}
	call.Status = status
	switch status {
	case entities.CallStatusAccepted:
		call.AcceptedAt = &at
	case entities.CallStatusRejected:
		call.RejectedAt = &at
	}
	return true, nil
}

func (r *fakeCallRepo) AcceptAndCreateSession(ctx context.Context, id uuid.UUID, session *entities.CallSession, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[id]
	if !ok || call.Status != entities.CallStatusPending {
		return false, nil
	}
	if r.acceptErr != nil {
		return false, r.acceptErr
	}
	if r.sessionStore != nil {
		if err := r.sessionStore.Create(ctx, session); err != nil {
			return false, err
		}
	}
	call.Status = entities.CallStatusAccepted
	call.AcceptedAt = &at
	return true, nil
}

func (r *fakeCallRepo) Complete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if call, ok := r.calls[id]; ok && call.Status == entities.CallStatusAccepted {
		call.Status = entities.CallStatusCompleted
		call.CompletedAt = &at
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.CallSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entities.CallSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entities.CallSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = entities.SessionStatusScheduled
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) FindByScheduledCallID(_ context.Context, callID uuid.UUID) (*entities.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.ScheduledCallID == callID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) RecordJoin(_ context.Context, id uuid.UUID, party entities.CallParty, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if party == entities.PartyCaller {
		if session.CallerJoinedAt == nil {
			session.CallerJoinedAt = &at
		}
	} else {
		if session.RecipientJoinedAt == nil {
			session.RecipientJoinedAt = &at
		}
	}
	if session.Status == entities.SessionStatusScheduled {
		session.Status = entities.SessionStatusWaiting
	}
	return nil
}

func (r *fakeSessionRepo) ActivateIfBothJoined(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if session.Status != entities.SessionStatusWaiting || !session.BothJoined() {
		return false, nil
	}
	session.Status = entities.SessionStatusActive
	session.StartedAt = &at
	return true, nil
}

func (r *fakeSessionRepo) EndActive(_ context.Context, id uuid.UUID, endedBy, reason string, at time.Time, durationSeconds int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if session.Status != entities.SessionStatusActive {
		return false, nil
	}
	session.Status = entities.SessionStatusEnded
	session.EndedAt = &at
	session.EndedBy = &endedBy
	session.EndReason = &reason
	session.DurationSeconds = &durationSeconds
	return true, nil
}

type fakeTranscriptRepo struct {
	mu       sync.Mutex
	segments []*entities.TranscriptSegment
	reports  []*entities.CallReport
	analyses map[uuid.UUID]*entities.CallAnalysis
}

func newFakeTranscriptRepo() *fakeTranscriptRepo {
	return &fakeTranscriptRepo{analyses: make(map[uuid.UUID]*entities.CallAnalysis)}
}

func (r *fakeTranscriptRepo) SaveSegment(_ context.Context, segment *entities.TranscriptSegment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if segment.ID == uuid.Nil {
		segment.ID = uuid.New()
	}
	r.segments = append(r.segments, segment)
	return nil
}

func (r *fakeTranscriptRepo) ListSegments(_ context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TranscriptSegment
	for _, seg := range r.segments {
		if seg.SessionID == sessionID {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (r *fakeTranscriptRepo) ListFinalSegments(_ context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TranscriptSegment
	for _, seg := range r.segments {
		if seg.SessionID == sessionID && seg.IsFinal {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (r *fakeTranscriptRepo) SaveReport(_ context.Context, report *entities.CallReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeTranscriptRepo) ListReports(_ context.Context, sessionID uuid.UUID) ([]*entities.CallReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.CallReport
	for _, report := range r.reports {
		if report.SessionID == sessionID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (r *fakeTranscriptRepo) SaveAnalysis(_ context.Context, analysis *entities.CallAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	r.analyses[analysis.SessionID] = analysis
	return nil
}

func (r *fakeTranscriptRepo) GetAnalysis(_ context.Context, sessionID uuid.UUID) (*entities.CallAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis, ok := r.analyses[sessionID]; ok {
		return analysis, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*entities.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListFor(_ context.Context, _ string, _, _ int) ([]*entities.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }

type fakeCompletionClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (c *fakeCompletionClient) Complete(_ context.Context, _ ai.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	idx := c.calls
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	c.calls++
	return c.responses[idx], nil
}

type noopAnalyzer struct{}

func (noopAnalyzer) AnalyzeSession(_ context.Context, _ uuid.UUID) (*entities.CallAnalysis, error) {
	return nil, nil
}

type fixedOrders string

func (o fixedOrders) ActiveOrders(_ context.Context) (string, error) { return string(o), nil }

type fixedEvaluator struct {
	compliant bool
	err       error
}

func (e fixedEvaluator) Evaluate(_ context.Context, _, _, _, _, _ string) (bool, error) {
	return e.compliant, e.err
}

func testParents() (*entities.User, *entities.User) {
	father := &entities.User{
		ID:           uuid.New(),
		Email:        "father@example.com",
		Name:         "David",
		ParentalRole: entities.ParentalRoleFather,
		Language:     "en",
	}
	mother := &entities.User{
		ID:           uuid.New(),
		Email:        "mother@example.com",
		Name:         "Mei",
		ParentalRole: entities.ParentalRoleMother,
		Language:     "en",
	}
	return father, mother
}

func testDispatcher(repo *fakeNotificationRepo) *notification.Dispatcher {
	return notification.NewDispatcher(&config.NotificationConfig{Enabled: true}, repo, zap.NewNop())
}

// acceptedCallAt seeds an accepted call with a session, scheduled at the
// given local time.
func acceptedCallAt(calls *fakeCallRepo, sessions *fakeSessionRepo, caller, recipient *entities.User, start time.Time, durationMinutes int) (*entities.ScheduledCall, *entities.CallSession) {
	call := &entities.ScheduledCall{
		CallerID:        caller.ID,
		CallerName:      caller.Name,
		CallerEmail:     caller.Email,
		RecipientName:   recipient.Name,
		RecipientEmail:  recipient.Email,
		ScheduledDate:   start.Format("2006-01-02"),
		ScheduledTime:   start.Format("15:04"),
		DurationMinutes: durationMinutes,
		Status:          entities.CallStatusAccepted,
	}
	_ = calls.Create(context.Background(), call)

	session := &entities.CallSession{
		ScheduledCallID: call.ID,
		SessionToken:    "test-token",
		Status:          entities.SessionStatusScheduled,
	}
	_ = sessions.Create(context.Background(), session)
	return call, session
}
