package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/data"
	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/domain/outcome"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
)

const (
	defaultReportLimit = 50
	maxReportLimit     = 200
)

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	Reports  core.ReportRepository
	Comments core.CommentRepository
	Profiles core.ProfileLookup
	Audit    core.AuditLogRepository // Optional
	Notifier Notifier                 // Optional
	Logger   *slog.Logger             // Optional
}

// ReportService applies the case visibility policy to every report operation.
type ReportService struct {
	reports  core.ReportRepository
	comments core.CommentRepository
	profiles core.ProfileLookup
	audit    *auditRecorder
	notifier Notifier
	logger   *slog.Logger
}

// NewReportService constructs a new ReportService.
func NewReportService(opts ReportServiceOptions) *ReportService {
	if opts.Reports == nil {
		panic("ReportRepository is required")
	}
	if opts.Comments == nil {
		panic("CommentRepository is required")
	}
	if opts.Profiles == nil {
		panic("ProfileLookup is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "report_service")
	return &ReportService{
		reports:  opts.Reports,
		comments: opts.Comments,
		profiles: opts.Profiles,
		audit:    newAuditRecorder(opts.Audit, logger),
		notifier: opts.Notifier,
		logger:   logger,
	}
}

// Create files a report owned by actor. Status starts unset.
func (s *ReportService) Create(
	ctx context.Context,
	actor domainauth.Identity,
	req *model.CreateReportRequest,
) (*model.Report, error) {
	req.OwnerSubjectID = actor.SubjectID
	req.OwnerEmail = actor.Email
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.reports.Create(ctx, req)
}

// List returns the reports actor may see: admins see all, users their own
// and lawyers the cases assigned to them.
func (s *ReportService) List(
	ctx context.Context,
	actor domainauth.Identity,
	opts model.ReportListOptions,
) ([]*model.Report, error) {
	opts.OwnerSubjectID, opts.AssignedLawyerID = nil, nil
	switch actor.Role {
	case domainauth.RoleAdmin:
	case domainauth.RoleUser:
		opts.OwnerSubjectID = &actor.SubjectID
	case domainauth.RoleLawyer:
		opts.AssignedLawyerID = &actor.SubjectID
	default:
		return nil, apperrors.FromAccess(access.ErrNoRole)
	}
	if opts.Limit <= 0 || opts.Limit > maxReportLimit {
		opts.Limit = defaultReportLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.reports.List(ctx, opts)
}

// Get assembles the case page: the report, its comments and the display-only
// outcome annotations. The report and comments load concurrently; comments
// are discarded if the actor may not view the case.
func (s *ReportService) Get(ctx context.Context, actor domainauth.Identity, id string) (*model.ReportDetail, error) {
	var (
		report   *model.Report
		comments []*model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.reports.GetByID(gctx, id)
		report = r
		return err
	})
	g.Go(func() error {
		c, err := s.comments.ListByReport(gctx, id)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		comments = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := authorize(actor, report, cases.ActionView); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	return &model.ReportDetail{
		Report:            report,
		StatusLabel:       report.Status.Label(),
		OutcomePrediction: outcome.Predict(report.Type, report.Description),
		Complexity:        outcome.Complexity(report.Description),
		Comments:          comments,
	}, nil
}

// Update edits the report content. Owners and admins only.
func (s *ReportService) Update(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req model.UpdateReportRequest,
) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.load(ctx, actor, id, cases.ActionEdit); err != nil {
		return nil, err
	}
	return s.reports.Update(ctx, id, req)
}

// Delete removes a report. Owners and admins only; admin deletions are audited.
func (s *ReportService) Delete(ctx context.Context, actor domainauth.Identity, id string) (bool, error) {
	if _, err := s.load(ctx, actor, id, cases.ActionEdit); err != nil {
		return false, err
	}
	ok, err := s.reports.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	if actor.Role == domainauth.RoleAdmin {
		s.audit.record(ctx, actor, model.AuditActionDeleteReport, &id, "deleted report "+id)
	}
	return true, nil
}

// Assign assigns a lawyer to a case, overwriting any previous assignment,
// and notifies the lawyer.
func (s *ReportService) Assign(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req model.AssignLawyerRequest,
) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.ValidationField("lawyer_id", err.Error())
	}
	if _, err := s.load(ctx, actor, id, cases.ActionAssign); err != nil {
		return nil, err
	}

	lawyer, err := s.profiles.GetBySubjectID(ctx, req.LawyerID)
	switch {
	case errors.Is(err, data.ErrProfileNotFound):
		return nil, apperrors.ValidationField("lawyer_id", "Selected lawyer not found.")
	case err != nil:
		return nil, fmt.Errorf("get lawyer profile: %w", err)
	}
	if domainauth.ParseRole(string(lawyer.Role)) != domainauth.RoleLawyer {
		return nil, apperrors.ValidationField("lawyer_id", "Selected user is not a lawyer.")
	}

	updated, err := s.reports.Assign(ctx, id, model.Assignment{LawyerID: lawyer.SubjectID, LawyerEmail: lawyer.Email})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor, model.AuditActionAssignLawyer, &id, "assigned lawyer "+lawyer.Email)
	s.notify(ctx, model.CreateNotificationRequest{
		RecipientID: lawyer.SubjectID,
		Message:     "You have been assigned a new case: " + id,
		Kind:        model.NotificationKindCase,
		ReportID:    &id,
	})
	return updated, nil
}

// UpdateStatus sets the case status and notifies the owner.
func (s *ReportService) UpdateStatus(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req model.UpdateStatusRequest,
) (*model.Report, error) {
	status, err := req.Parse()
	if err != nil {
		return nil, apperrors.ValidationField("status", err.Error())
	}
	if _, err = s.load(ctx, actor, id, cases.ActionWork); err != nil {
		return nil, err
	}

	updated, err := s.reports.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, model.CreateNotificationRequest{
		RecipientID: updated.OwnerSubjectID,
		Message: fmt.Sprintf("Your case (%s) has been updated to %q by your assigned lawyer.",
			updated.Type, string(status)),
		Kind:     model.NotificationKindCase,
		ReportID: &id,
	})
	return updated, nil
}

// UpdateNotes replaces the case notes.
func (s *ReportService) UpdateNotes(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req model.UpdateNotesRequest,
) (*model.Report, error) {
	if _, err := s.load(ctx, actor, id, cases.ActionWork); err != nil {
		return nil, err
	}
	return s.reports.SetNotes(ctx, id, req.Notes)
}

// ListComments returns the case comments newest first.
func (s *ReportService) ListComments(ctx context.Context, actor domainauth.Identity, id string) ([]*model.Comment, error) {
	if _, err := s.load(ctx, actor, id, cases.ActionView); err != nil {
		return nil, err
	}
	return s.comments.ListByReport(ctx, id)
}

// AddComment posts a comment on the case as actor.
func (s *ReportService) AddComment(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req *model.CreateCommentRequest,
) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.load(ctx, actor, id, cases.ActionWork); err != nil {
		return nil, err
	}
	req.ReportID = id
	req.LawyerEmail = actor.Email
	return s.comments.Create(ctx, req)
}

func (s *ReportService) load(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	action cases.Action,
) (*model.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, report, action); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) notify(ctx context.Context, req model.CreateNotificationRequest) {
	if s.notifier == nil || req.RecipientID == "" {
		return
	}
	s.notifier.Send(ctx, req)
}

func authorize(actor domainauth.Identity, report *model.Report, action cases.Action) error {
	d, err := cases.Authorize(actor, report.Record(), action)
	if d == access.Allow {
		return nil
	}
	if err == nil {
		err = access.ErrForbidden
	}
	return apperrors.FromAccess(err)
}
