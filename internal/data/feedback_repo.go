package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// FeedbackRepo provides database operations for feedback.
type FeedbackRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create stores feedback.
func (r *FeedbackRepo) Create(ctx context.Context, req *model.CreateFeedbackRequest) (*model.Feedback, error) {
	if req == nil {
		return nil, errors.New("create feedback request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out, err := queryOne[model.Feedback](ctx, r.DB, `
		INSERT INTO feedback (name, email, message, created_at) VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, message, created_at`,
		req.Name, req.Email, req.Message, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return out, nil
}

// List returns feedback newest first.
func (r *FeedbackRepo) List(ctx context.Context, limit, offset int) ([]*model.Feedback, error) {
	limit, offset = pageBounds(limit, offset)
	out, err := queryAll[model.Feedback](ctx, r.DB, `
		SELECT id, name, email, message, created_at FROM feedback
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return out, nil
}
