package service

import (
	"context"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
)

const (
	defaultAdminListLimit = 100
	maxAdminListLimit     = 500
)

// FeedbackServiceOptions groups dependencies for FeedbackService.
type FeedbackServiceOptions struct {
	Feedback core.FeedbackRepository
	Audit    core.AuditLogRepository
}

// FeedbackService accepts public feedback and serves the admin read views of
// feedback and the audit log.
type FeedbackService struct {
	feedback core.FeedbackRepository
	audit    core.AuditLogRepository
}

// NewFeedbackService constructs a new FeedbackService.
func NewFeedbackService(opts FeedbackServiceOptions) *FeedbackService {
	if opts.Feedback == nil || opts.Audit == nil {
		panic("feedback and audit log repositories are required")
	}
	return &FeedbackService{feedback: opts.Feedback, audit: opts.Audit}
}

// Submit stores a feedback message.
func (s *FeedbackService) Submit(ctx context.Context, req *model.CreateFeedbackRequest) (*model.Feedback, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.ValidationField("message", err.Error())
	}
	return s.feedback.Create(ctx, req)
}

// ListFeedback returns feedback newest first.
func (s *FeedbackService) ListFeedback(ctx context.Context, limit, offset int) ([]*model.Feedback, error) {
	limit, offset = clampPage(limit, offset)
	return s.feedback.List(ctx, limit, offset)
}

// ListAuditLogs returns audit entries newest first.
func (s *FeedbackService) ListAuditLogs(ctx context.Context, limit, offset int) ([]*model.AuditLog, error) {
	limit, offset = clampPage(limit, offset)
	return s.audit.List(ctx, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxAdminListLimit {
		limit = defaultAdminListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
