package repositories

import (
	"context"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TranscriptRepository defines persistence operations for transcript segments,
// manual reports and post-call analyses
type TranscriptRepository interface {
	// Segments
	SaveSegment(ctx context.Context, segment *entities.TranscriptSegment) error
	ListSegments(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error)
	ListFinalSegments(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error)

	// Manual reports
	SaveReport(ctx context.Context, report *entities.CallReport) error
	ListReports(ctx context.Context, sessionID uuid.UUID) ([]*entities.CallReport, error)

	// Analyses
	SaveAnalysis(ctx context.Context, analysis *entities.CallAnalysis) error
	GetAnalysis(ctx context.Context, sessionID uuid.UUID) (*entities.CallAnalysis, error)
}
