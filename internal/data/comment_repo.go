package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// CommentRepo provides database operations for report comments.
type CommentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCommentRepo creates a new CommentRepo.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a comment.
func (r *CommentRepo) Create(ctx context.Context, req *model.CreateCommentRequest) (*model.Comment, error) {
	if req == nil {
		return nil, errors.New("create comment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ReportID); err != nil {
		return nil, ErrReportNotFound
	}
	out, err := queryOne[model.Comment](ctx, r.DB, `
		INSERT INTO report_comments (report_id, lawyer_email, body, file_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, report_id, lawyer_email, body, file_url, created_at`,
		req.ReportID, req.LawyerEmail, req.Body, req.FileURL, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return out, nil
}

// ListByReport returns a report's comments newest first.
func (r *CommentRepo) ListByReport(ctx context.Context, reportID string) ([]*model.Comment, error) {
	if _, err := uuid.Parse(reportID); err != nil {
		return []*model.Comment{}, nil
	}
	out, err := queryAll[model.Comment](ctx, r.DB, `
		SELECT id, report_id, lawyer_email, body, file_url, created_at
		FROM report_comments WHERE report_id = $1 ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return out, nil
}
