package call

import (
	"context"
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
)

// Violation note values stored on transcript segments.
const (
	noteViolation = "Policy violation detected"
	noteClean     = "Clean"
)

// UtteranceEvaluator checks a live utterance against the orders
type UtteranceEvaluator interface {
	Evaluate(ctx context.Context, message, orders, senderRole, recipientRole, language string) (bool, error)
}

// OrdersProvider supplies the active court order text
type OrdersProvider interface {
	ActiveOrders(ctx context.Context) (string, error)
}

// Monitor screens live call utterances. Violations are flagged and recorded
// for the post-call analysis but never terminate the call, so the transcript
// keeps documenting what was said.
type Monitor struct {
	calls       repositories.ScheduledCallRepository
	sessions    repositories.CallSessionRepository
	transcripts repositories.TranscriptRepository
	evaluator   UtteranceEvaluator
	orders      OrdersProvider
	logger      *zap.Logger
	now         func() time.Time
}

// NewMonitor creates a new live moderation monitor
func NewMonitor(
	calls repositories.ScheduledCallRepository,
	sessions repositories.CallSessionRepository,
	transcripts repositories.TranscriptRepository,
	evaluator UtteranceEvaluator,
	orders OrdersProvider,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		calls:       calls,
		sessions:    sessions,
		transcripts: transcripts,
		evaluator:   evaluator,
		orders:      orders,
		logger:      logger,
		now:         time.Now,
	}
}

// AppendInput represents one utterance captured on a client
type AppendInput struct {
	SessionID  uuid.UUID
	Speaker    *entities.User
	Text       string
	Confidence float64
	IsFinal    bool
}

// AppendOutput reports what happened to the utterance
type AppendOutput struct {
	ViolationDetected bool
	CallEnded         bool
	Message           string
}

// Append screens and stores a live utterance. Only participants of an
// active session may submit, and the utterance is evaluated before it is
// written so the stored segment always carries its verdict.
func (m *Monitor) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	session, call, err := m.sessionWithCall(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !call.IsParty(input.Speaker.Email) {
		return nil, apperrors.ErrNotCallParty(input.SessionID.String())
	}
	if !session.IsActive() {
		return nil, apperrors.ErrStateConflict("transcribe", input.SessionID.String(), "call is not active")
	}

	senderRole := input.Speaker.ParentalRole
	ordersText, err := m.orders.ActiveOrders(ctx)
	if err != nil {
		return nil, err
	}

	compliant, err := m.evaluator.Evaluate(ctx, input.Text, ordersText,
		string(senderRole), string(senderRole.Other()), input.Speaker.Language)
	if err != nil {
		return nil, err
	}
	violation := !compliant

	note := noteClean
	if violation {
		note = noteViolation
	}

	segment := &entities.TranscriptSegment{
		SessionID:         input.SessionID,
		Speaker:           input.Speaker.Name,
		Text:              input.Text,
		Confidence:        input.Confidence,
		IsFinal:           input.IsFinal,
		ViolationDetected: violation,
		AnalysisNote:      &note,
		Timestamp:         m.now(),
	}
	if err := m.transcripts.SaveSegment(ctx, segment); err != nil {
		return nil, apperrors.ErrDBQueryFailed("save transcript segment", err)
	}

	if violation {
		m.logger.Warn("policy violation during call",
			zap.String("session_id", input.SessionID.String()),
			zap.String("speaker", input.Speaker.Email))
	}

	message := "Transcription processed successfully"
	if violation {
		message += " - Policy concern noted"
	}
	return &AppendOutput{
		ViolationDetected: violation,
		CallEnded:         false,
		Message:           message,
	}, nil
}

// ReportInput represents a manual violation report filed during a call
type ReportInput struct {
	SessionID   uuid.UUID
	Reporter    *entities.User
	ReportType  string
	Reason      string
	Description *string
}

// Report files a manual violation report. The report is mirrored into the
// transcript as a system segment so the post-call analysis sees it in
// sequence, and the call continues for documentation purposes.
func (m *Monitor) Report(ctx context.Context, input ReportInput) (*entities.CallReport, error) {
	_, call, err := m.sessionWithCall(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !call.IsParty(input.Reporter.Email) {
		return nil, apperrors.ErrNotCallParty(input.SessionID.String())
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.ErrValidation("report reason is required")
	}

	now := m.now()
	report := &entities.CallReport{
		SessionID:     input.SessionID,
		ReporterEmail: input.Reporter.Email,
		ReporterName:  input.Reporter.Name,
		ReportType:    input.ReportType,
		Reason:        input.Reason,
		Description:   input.Description,
		Severity:      "medium",
		Timestamp:     now,
	}
	if err := m.transcripts.SaveReport(ctx, report); err != nil {
		return nil, apperrors.ErrDBQueryFailed("save call report", err)
	}

	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	note := fmt.Sprintf("Manual report: %s", input.ReportType)
	segment := &entities.TranscriptSegment{
		SessionID: input.SessionID,
		Speaker:   entities.SystemSpeaker,
		Text: fmt.Sprintf("[MANUAL REPORT by %s]: %s - %s",
			input.Reporter.Name, input.Reason, description),
		Confidence:        1.0,
		IsFinal:           true,
		ViolationDetected: true,
		AnalysisNote:      &note,
		Timestamp:         now,
	}
	if err := m.transcripts.SaveSegment(ctx, segment); err != nil {
		return nil, apperrors.ErrDBQueryFailed("save report segment", err)
	}

	m.logger.Warn("manual violation report filed",
		zap.String("session_id", input.SessionID.String()),
		zap.String("reporter", input.Reporter.Email),
		zap.String("report_type", input.ReportType))
	return report, nil
}

// Transcript returns the full transcript of a session for a participant
func (m *Monitor) Transcript(ctx context.Context, sessionID uuid.UUID, viewer *entities.User) ([]*entities.TranscriptSegment, error) {
	_, call, err := m.sessionWithCall(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !call.IsParty(viewer.Email) {
		return nil, apperrors.ErrNotCallParty(sessionID.String())
	}

	segments, err := m.transcripts.ListSegments(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list transcript segments", err)
	}
	return segments, nil
}

// Analysis returns the stored post-call analysis for a participant
func (m *Monitor) Analysis(ctx context.Context, sessionID uuid.UUID, viewer *entities.User) (*entities.CallAnalysis, error) {
	_, call, err := m.sessionWithCall(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !call.IsParty(viewer.Email) {
		return nil, apperrors.ErrNotCallParty(sessionID.String())
	}

	analysis, err := m.transcripts.GetAnalysis(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("call analysis")
		}
		return nil, apperrors.ErrDBQueryFailed("get call analysis", err)
	}
	return analysis, nil
}

// HistoryEntry summarizes one call for the history view
type HistoryEntry struct {
	Call              *entities.ScheduledCall `json:"call"`
	Session           *entities.CallSession   `json:"session,omitempty"`
	ViolationCount    int                     `json:"violation_count"`
	ReportCount       int                     `json:"report_count"`
	AnalysisAvailable bool                    `json:"analysis_available"`
}

// History lists the user's calls with their accountability counts. Calls
// that were never accepted have no session and carry zero counts.
func (m *Monitor) History(ctx context.Context, viewer *entities.User, limit, offset int) ([]*HistoryEntry, error) {
	calls, err := m.calls.ListFor(ctx, viewer.Email, limit, offset)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list calls", err)
	}

	entries := make([]*HistoryEntry, 0, len(calls))
	for _, scheduled := range calls {
		entry := &HistoryEntry{Call: scheduled}

		session, err := m.sessions.FindByScheduledCallID(ctx, scheduled.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrDBQueryFailed("find call session", err)
			}
			entries = append(entries, entry)
			continue
		}
		entry.Session = session

		segments, err := m.transcripts.ListSegments(ctx, session.ID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("list transcript segments", err)
		}
		for _, segment := range segments {
			// SYSTEM segments mirror manual reports, counted separately below.
			if segment.ViolationDetected && segment.Speaker != entities.SystemSpeaker {
				entry.ViolationCount++
			}
		}

		reports, err := m.transcripts.ListReports(ctx, session.ID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("list call reports", err)
		}
		entry.ReportCount = len(reports)

		if _, err := m.transcripts.GetAnalysis(ctx, session.ID); err == nil {
			entry.AnalysisAvailable = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDBQueryFailed("get call analysis", err)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *Monitor) sessionWithCall(ctx context.Context, sessionID uuid.UUID) (*entities.CallSession, *entities.ScheduledCall, error) {
	return loadSessionWithCall(ctx, m.sessions, m.calls, sessionID)
}
