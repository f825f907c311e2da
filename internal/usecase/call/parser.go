package call

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexibleInt tolerates the model returning a score as either a number or a
// quoted string.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// "7/10" style answers keep the leading number
		if idx := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); idx > 0 {
			if n, err2 := strconv.Atoi(s[:idx]); err2 == nil {
				*f = flexibleInt(n)
				return nil
			}
		}
		return fmt.Errorf("invalid score %q: %w", s, err)
	}
	*f = flexibleInt(n)
	return nil
}

// analysisResponse mirrors the JSON document the analysis prompt asks for
type analysisResponse struct {
	CallSummary       string      `json:"call_summary"`
	ContentAnalysis   string      `json:"content_analysis"`
	SafetyAssessment  string      `json:"safety_assessment"`
	ViolationsFound   []any       `json:"violations_found"`
	SafetyScore       flexibleInt `json:"safety_score"`
	Recommendations   []string    `json:"recommendations"`
	KeyTopics         []string    `json:"key_topics"`
	CommunicationTone string      `json:"communication_tone"`
	Concerns          []string    `json:"concerns"`
}

// parseAnalysisResponse extracts the analysis document from a raw model
// reply. The model occasionally wraps the JSON in a markdown code fence or
// surrounds it with prose, so the parser carves out the outermost object
// before unmarshalling.
func parseAnalysisResponse(raw string) (*analysisResponse, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in analysis response")
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &resp, nil
}

// extractJSON returns the outermost JSON object embedded in the text.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if fenced := strings.Index(raw, "```"); fenced >= 0 {
		raw = raw[fenced+3:]
		raw = strings.TrimPrefix(raw, "json")
		if end := strings.Index(raw, "```"); end >= 0 {
			raw = raw[:end]
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
