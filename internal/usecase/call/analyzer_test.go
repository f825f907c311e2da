package call

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
)

func seedSegment(t *testing.T, transcripts *fakeTranscriptRepo, sessionID uuid.UUID, speaker, text string, final, violation bool) {
	t.Helper()
	require.NoError(t, transcripts.SaveSegment(context.Background(), &entities.TranscriptSegment{
		SessionID:         sessionID,
		Speaker:           speaker,
		Text:              text,
		Confidence:        0.9,
		IsFinal:           final,
		ViolationDetected: violation,
		Timestamp:         time.Now(),
	}))
}

func TestAnalyzeSession_NoFinalSegmentsSkips(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "partial words", false, false)

	client := &fakeCompletionClient{responses: []string{"{}"}}
	analyzer := NewAnalyzer(transcripts, client, zap.NewNop())

	analysis, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, analysis)
	assert.Zero(t, client.calls, "model is never consulted without a transcript")
}

func TestAnalyzeSession_ParsesModelResponse(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "can we talk about school", true, false)
	seedSegment(t, transcripts, sessionID, "Mei", "yes, Monday works", true, false)

	client := &fakeCompletionClient{responses: []string{`{
		"call_summary": "Parents agreed on a Monday school discussion",
		"content_analysis": "Short cooperative exchange",
		"safety_assessment": "No safety concerns",
		"violations_found": [],
		"safety_score": 10,
		"recommendations": ["Continue scheduling via the app"],
		"key_topics": ["school"],
		"communication_tone": "Cooperative",
		"concerns": []
	}`}}
	analyzer := NewAnalyzer(transcripts, client, zap.NewNop())

	analysis, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, analysis)

	assert.Equal(t, "Parents agreed on a Monday school discussion", analysis.Summary)
	assert.Equal(t, 10, analysis.SafetyScore)
	assert.False(t, analysis.ViolationsDetected)
	assert.Equal(t, "Cooperative", analysis.CommunicationTone)

	stored, err := transcripts.GetAnalysis(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, analysis, stored)
}

func TestAnalyzeSession_CodeFencedResponse(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "hello", true, false)

	client := &fakeCompletionClient{responses: []string{
		"```json\n{\"call_summary\": \"Brief call\", \"safety_score\": \"8\"}\n```",
	}}
	analyzer := NewAnalyzer(transcripts, client, zap.NewNop())

	analysis, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "Brief call", analysis.Summary)
	assert.Equal(t, 8, analysis.SafetyScore, "quoted scores are accepted")
}

func TestAnalyzeSession_ScoreClamped(t *testing.T) {
	for raw, want := range map[string]int{"0": 1, "-3": 1, "15": 10, "7": 7} {
		transcripts := newFakeTranscriptRepo()
		sessionID := uuid.New()
		seedSegment(t, transcripts, sessionID, "David", "hello", true, false)

		client := &fakeCompletionClient{responses: []string{
			`{"call_summary": "x", "safety_score": ` + raw + `}`,
		}}
		analysis, err := NewAnalyzer(transcripts, client, zap.NewNop()).AnalyzeSession(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, want, analysis.SafetyScore, "raw score %s", raw)
	}
}

func TestAnalyzeSession_ModelFailureStoresFallback(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "you will regret this", true, true)

	client := &fakeCompletionClient{err: errors.New("model unavailable")}
	analyzer := NewAnalyzer(transcripts, client, zap.NewNop())

	analysis, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err, "analysis failure must not fail the ended call")
	require.NotNil(t, analysis)

	assert.Equal(t, "Call completed - Analysis unavailable", analysis.Summary)
	assert.Equal(t, 5, analysis.SafetyScore)
	assert.True(t, analysis.ViolationsDetected, "flagged segments survive the fallback")

	var recommendations []string
	require.NoError(t, json.Unmarshal(analysis.Recommendations, &recommendations))
	assert.Equal(t, []string{"Manual review recommended"}, recommendations)
}

func TestAnalyzeSession_GarbageResponseStoresFallback(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "hello", true, false)

	client := &fakeCompletionClient{responses: []string{"I could not analyze this call, sorry."}}
	analysis, err := NewAnalyzer(transcripts, client, zap.NewNop()).AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "Call completed - Analysis unavailable", analysis.Summary)
}

func TestAnalyzeSession_RunsAtMostOnce(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "hello", true, false)

	client := &fakeCompletionClient{responses: []string{`{"call_summary": "First run", "safety_score": 9}`}}
	analyzer := NewAnalyzer(transcripts, client, zap.NewNop())

	first, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)
	second, err := analyzer.AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls, "model consulted once per session")
}

func TestAnalyzeSession_ManualReportsFeedViolations(t *testing.T) {
	transcripts := newFakeTranscriptRepo()
	sessionID := uuid.New()
	seedSegment(t, transcripts, sessionID, "David", "hello", true, false)
	description := "shouting"
	require.NoError(t, transcripts.SaveReport(context.Background(), &entities.CallReport{
		SessionID:     sessionID,
		ReporterName:  "Mei",
		ReporterEmail: "mother@example.com",
		ReportType:    "verbal_abuse",
		Reason:        "Shouting",
		Description:   &description,
		Severity:      "medium",
		Timestamp:     time.Now(),
	}))

	client := &fakeCompletionClient{responses: []string{`{"call_summary": "x", "safety_score": 4}`}}
	analysis, err := NewAnalyzer(transcripts, client, zap.NewNop()).AnalyzeSession(context.Background(), sessionID)
	require.NoError(t, err)

	assert.True(t, analysis.ViolationsDetected)

	var details []map[string]any
	require.NoError(t, json.Unmarshal(analysis.ViolationDetails, &details))
	require.Len(t, details, 1)
	assert.Equal(t, "manual_report", details[0]["type"])
	assert.Equal(t, "Mei", details[0]["reported_by"])
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		`{"a": 1}`:                        `{"a": 1}`,
		"Here you go: {\"a\": 1} thanks":  `{"a": 1}`,
		"```json\n{\"a\": 1}\n```":        `{"a": 1}`,
		"no json here":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, extractJSON(in), "input %q", in)
	}
}

func TestFlexibleInt(t *testing.T) {
	var doc struct {
		Score flexibleInt `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"score": 7}`), &doc))
	assert.Equal(t, flexibleInt(7), doc.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"score": "9"}`), &doc))
	assert.Equal(t, flexibleInt(9), doc.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"score": "7/10"}`), &doc))
	assert.Equal(t, flexibleInt(7), doc.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"score": null}`), &doc))
	assert.Equal(t, flexibleInt(0), doc.Score)
}
