package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// transcriptRepository implements the TranscriptRepository interface
type transcriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) repositories.TranscriptRepository {
	return &transcriptRepository{db: db}
}

// SaveSegment stores a transcript segment
func (r *transcriptRepository) SaveSegment(ctx context.Context, segment *entities.TranscriptSegment) error {
	return r.db.WithContext(ctx).Create(segment).Error
}

// ListSegments retrieves all segments of a session in capture order
func (r *transcriptRepository) ListSegments(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&segments).Error

	if err != nil {
		return nil, err
	}
	return segments, nil
}

// ListFinalSegments retrieves only finalized segments of a session
func (r *transcriptRepository) ListFinalSegments(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_final = ?", sessionID, true).
		Order("timestamp ASC").
		Find(&segments).Error

	if err != nil {
		return nil, err
	}
	return segments, nil
}

// SaveReport stores a manual call report
func (r *transcriptRepository) SaveReport(ctx context.Context, report *entities.CallReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListReports retrieves the manual reports filed during a session
func (r *transcriptRepository) ListReports(ctx context.Context, sessionID uuid.UUID) ([]*entities.CallReport, error) {
	var reports []*entities.CallReport
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&reports).Error

	if err != nil {
		return nil, err
	}
	return reports, nil
}

// SaveAnalysis stores a post-call analysis
func (r *transcriptRepository) SaveAnalysis(ctx context.Context, analysis *entities.CallAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// GetAnalysis retrieves the analysis for a session
func (r *transcriptRepository) GetAnalysis(ctx context.Context, sessionID uuid.UUID) (*entities.CallAnalysis, error) {
	var analysis entities.CallAnalysis
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&analysis).Error

	if err != nil {
		return nil, err
	}
	return &analysis, nil
}
