package core

import (
	"context"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ProfileLookup is the read side the identity resolver depends on.
type ProfileLookup interface {
	// GetBySubjectID returns the profile or data.ErrProfileNotFound.
	GetBySubjectID(ctx context.Context, subjectID string) (*model.Profile, error)
}

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	ProfileLookup
	Create(ctx context.Context, req *model.CreateProfileRequest) (*model.Profile, error)
	Update(ctx context.Context, subjectID string, req model.UpdateProfileRequest) (*model.Profile, error)
	SetRole(ctx context.Context, subjectID string, role domainauth.Role) (*model.Profile, error)
	List(ctx context.Context, opts model.ProfileListOptions) ([]*model.Profile, error)
	Delete(ctx context.Context, subjectID string) (bool, error)
	CountByRole(ctx context.Context) ([]model.CountBucket, error)
}

// ReportRepository defines the interface for report (case) data operations.
type ReportRepository interface {
	Create(ctx context.Context, req *model.CreateReportRequest) (*model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, opts model.ReportListOptions) ([]*model.Report, error)
	Update(ctx context.Context, id string, req model.UpdateReportRequest) (*model.Report, error)
	Delete(ctx context.Context, id string) (bool, error)
	Assign(ctx context.Context, id string, a model.Assignment) (*model.Report, error)
	SetStatus(ctx context.Context, id string, status cases.Status) (*model.Report, error)
	SetNotes(ctx context.Context, id, notes string) (*model.Report, error)
	Count(ctx context.Context) (int, error)
	// CountBy groups reports by one of "type", "incident_date", "status".
	CountBy(ctx context.Context, field string) ([]model.CountBucket, error)
}

// WitnessReportRepository defines the interface for witness report data operations.
type WitnessReportRepository interface {
	Create(ctx context.Context, req *model.CreateWitnessReportRequest) (*model.WitnessReport, error)
	GetByID(ctx context.Context, id string) (*model.WitnessReport, error)
	List(ctx context.Context, opts model.WitnessReportListOptions) ([]*model.WitnessReport, error)
	UpdateTestimony(ctx context.Context, id, testimony string) (*model.WitnessReport, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for case comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, req *model.CreateCommentRequest) (*model.Comment, error)
	// ListByReport returns comments newest first.
	ListByReport(ctx context.Context, reportID string) ([]*model.Comment, error)
}

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	// List returns the recipient's notifications newest first.
	List(ctx context.Context, opts model.NotificationListOptions) ([]*model.Notification, error)
	// MarkRead and Delete only affect rows owned by recipientID.
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	Delete(ctx context.Context, id, recipientID string) (bool, error)
}

// AuditLogRepository defines the interface for audit log data operations.
type AuditLogRepository interface {
	Create(ctx context.Context, req *model.CreateAuditLogRequest) (*model.AuditLog, error)
	List(ctx context.Context, limit, offset int) ([]*model.AuditLog, error)
}

// FeedbackRepository defines the interface for feedback data operations.
type FeedbackRepository interface {
	Create(ctx context.Context, req *model.CreateFeedbackRequest) (*model.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]*model.Feedback, error)
}
