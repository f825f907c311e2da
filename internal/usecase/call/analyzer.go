package call

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
	"github.com/accordfamily/accord-backend/pkg/ai"
)

const segmentTimeFormat = "2006-01-02 15:04:05"

// CompletionClient abstracts the language model used for analysis
type CompletionClient interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

// violationDetail is one entry of the violation record attached to an analysis
type violationDetail struct {
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
	Speaker     string `json:"speaker,omitempty"`
	Text        string `json:"text,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
	ReportedBy  string `json:"reported_by,omitempty"`
}

// Analyzer produces the post-call record from the transcript and the manual
// reports. Analysis failures never undo an ended call; when the model is
// unreachable or returns garbage a conservative placeholder record is stored
// so the session still has a reviewable outcome.
type Analyzer struct {
	transcripts repositories.TranscriptRepository
	client      CompletionClient
	logger      *zap.Logger
}

// NewAnalyzer creates a new post-call analyzer
func NewAnalyzer(transcripts repositories.TranscriptRepository, client CompletionClient, logger *zap.Logger) *Analyzer {
	return &Analyzer{transcripts: transcripts, client: client, logger: logger}
}

// AnalyzeSession analyzes an ended session. Sessions without any finalized
// transcript are skipped and return nil. The analysis is written at most
// once per session.
func (a *Analyzer) AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (*entities.CallAnalysis, error) {
	if existing, err := a.transcripts.GetAnalysis(ctx, sessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrDBQueryFailed("get call analysis", err)
	}

	segments, err := a.transcripts.ListFinalSegments(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list final segments", err)
	}
	if len(segments) == 0 {
		return nil, nil
	}

	reports, err := a.transcripts.ListReports(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list call reports", err)
	}

	violations := collectViolations(segments, reports)
	analysis := a.runAnalysis(ctx, sessionID, segments, violations)

	if err := a.transcripts.SaveAnalysis(ctx, analysis); err != nil {
		return nil, apperrors.ErrDBQueryFailed("save call analysis", err)
	}

	a.logger.Info("post-call analysis stored",
		zap.String("session_id", sessionID.String()),
		zap.Int("safety_score", analysis.SafetyScore),
		zap.Bool("violations_detected", analysis.ViolationsDetected))
	return analysis, nil
}

// runAnalysis asks the model for the analysis document and falls back to a
// placeholder record when anything goes wrong.
func (a *Analyzer) runAnalysis(ctx context.Context, sessionID uuid.UUID, segments []*entities.TranscriptSegment, violations []violationDetail) *entities.CallAnalysis {
	raw, err := a.client.Complete(ctx, analysisPrompt(segments, violations))
	if err != nil {
		a.logger.Error("analysis model call failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		return fallbackAnalysis(sessionID, violations)
	}

	resp, err := parseAnalysisResponse(raw)
	if err != nil {
		a.logger.Warn("unparseable analysis response",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		return fallbackAnalysis(sessionID, violations)
	}

	return &entities.CallAnalysis{
		SessionID:          sessionID,
		Summary:            orDefault(resp.CallSummary, "Call completed"),
		ContentAnalysis:    orDefault(resp.ContentAnalysis, "Analysis completed"),
		SafetyAssessment:   resp.SafetyAssessment,
		SafetyScore:        entities.ClampSafetyScore(int(resp.SafetyScore)),
		ViolationsDetected: len(violations) > 0,
		ViolationDetails:   mustJSON(violations),
		Recommendations:    mustJSON(resp.Recommendations),
		KeyTopics:          mustJSON(resp.KeyTopics),
		CommunicationTone:  orDefault(resp.CommunicationTone, "Neutral"),
		Concerns:           mustJSON(resp.Concerns),
	}
}

// collectViolations merges flagged segments and manual reports into one
// chronology for the analysis prompt and the stored record.
func collectViolations(segments []*entities.TranscriptSegment, reports []*entities.CallReport) []violationDetail {
	violations := make([]violationDetail, 0)
	for _, seg := range segments {
		if !seg.ViolationDetected || seg.Speaker == entities.SystemSpeaker {
			continue
		}
		violations = append(violations, violationDetail{
			Timestamp: seg.Timestamp.Format(segmentTimeFormat),
			Type:      "ai_detected",
			Speaker:   seg.Speaker,
			Text:      seg.Text,
		})
	}
	for _, report := range reports {
		description := ""
		if report.Description != nil {
			description = *report.Description
		}
		violations = append(violations, violationDetail{
			Timestamp:   report.Timestamp.Format(segmentTimeFormat),
			Type:        "manual_report",
			Reason:      report.Reason,
			Description: description,
			ReportedBy:  report.ReporterName,
		})
	}
	return violations
}

func analysisPrompt(segments []*entities.TranscriptSegment, violations []violationDetail) ai.CompletionRequest {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			seg.Timestamp.Format(segmentTimeFormat), seg.Speaker, seg.Text))
	}

	violationsJSON, _ := json.MarshalIndent(violations, "", "  ")

	content := fmt.Sprintf(`Please analyze this family communication call transcript and provide a comprehensive analysis.

CALL TRANSCRIPT:
%s

VIOLATION ALERTS:
%s

Please provide analysis in JSON format with these fields:
{
    "call_summary": "Brief summary of call content and topics discussed",
    "content_analysis": "Detailed analysis of communication patterns and topics",
    "safety_assessment": "Assessment of communication safety and appropriateness",
    "violations_found": [list of specific violations with descriptions],
    "safety_score": "Score from 1-10 (10 being safest communication)",
    "recommendations": [list of recommendations for future communications],
    "key_topics": [main topics discussed],
    "communication_tone": "Overall tone assessment",
    "concerns": [any concerns identified]
}

Focus on:
1. Family violence prevention
2. Child-focused communication
3. Respectful co-parenting
4. Policy compliance
5. Communication effectiveness`, strings.Join(lines, "\n"), string(violationsJSON))

	return ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: content}},
		MaxTokens:   2000,
		Temperature: 0.2,
	}
}

// fallbackAnalysis is the record stored when the model cannot produce one.
func fallbackAnalysis(sessionID uuid.UUID, violations []violationDetail) *entities.CallAnalysis {
	return &entities.CallAnalysis{
		SessionID:          sessionID,
		Summary:            "Call completed - Analysis unavailable",
		ContentAnalysis:    "Analysis error",
		SafetyAssessment:   "Unknown",
		SafetyScore:        5,
		ViolationsDetected: len(violations) > 0,
		ViolationDetails:   mustJSON(violations),
		Recommendations:    mustJSON([]string{"Manual review recommended"}),
		KeyTopics:          mustJSON([]string{}),
		CommunicationTone:  "Unknown",
		Concerns:           mustJSON([]string{"Analysis system error"}),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
