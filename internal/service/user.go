package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/data"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

const maxLawyerList = 200

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Profiles core.ProfileRepository
	Events   ports.AuthEventStream   // Optional: role changes re-resolve live guards
	Audit    core.AuditLogRepository // Optional
	Logger   *slog.Logger            // Optional
}

// UserService owns profiles: self registration and settings, and the admin
// user management that changes roles.
type UserService struct {
	profiles core.ProfileRepository
	events   ports.AuthEventStream
	audit    *auditRecorder
	logger   *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	if opts.Profiles == nil {
		panic("ProfileRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "user_service")
	return &UserService{
		profiles: opts.Profiles,
		events:   opts.Events,
		audit:    newAuditRecorder(opts.Audit, logger),
		logger:   logger,
	}
}

// Register creates the subject's profile. Only user and lawyer may be chosen;
// admin is granted by an admin.
func (s *UserService) Register(
	ctx context.Context,
	subject domainauth.Subject,
	req *model.CreateProfileRequest,
) (*model.Profile, error) {
	req.SubjectID = subject.ID
	req.Email = subject.Email
	if err := req.Validate(); err != nil {
		return nil, apperrors.ValidationField("role", err.Error())
	}
	if !req.Role.SelfAssignable() {
		return nil, apperrors.Forbidden("The admin role can only be granted by an administrator.")
	}

	p, err := s.profiles.Create(ctx, req)
	if errors.Is(err, data.ErrProfileExists) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "You are already registered.")
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ports.AuthEvent{SubjectID: subject.ID, Subject: &subject, Cause: ports.CauseRoleChange})
	return p, nil
}

// Profile returns the subject's own profile.
func (s *UserService) Profile(ctx context.Context, subjectID string) (*model.Profile, error) {
	return s.profiles.GetBySubjectID(ctx, subjectID)
}

// UpdateProfile applies self-service settings.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	subjectID string,
	req model.UpdateProfileRequest,
) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.profiles.Update(ctx, subjectID, req)
}

// ListUsers returns profiles for the admin user list.
func (s *UserService) ListUsers(ctx context.Context, opts model.ProfileListOptions) ([]*model.Profile, error) {
	return s.profiles.List(ctx, opts)
}

// ListLawyers returns the lawyers available for assignment.
func (s *UserService) ListLawyers(ctx context.Context) ([]*model.Profile, error) {
	role := domainauth.RoleLawyer
	return s.profiles.List(ctx, model.ProfileListOptions{Role: &role, Limit: maxLawyerList})
}

// ChangeRole sets a subject's role and tells that subject's live guards.
func (s *UserService) ChangeRole(
	ctx context.Context,
	actor domainauth.Identity,
	subjectID, rawRole string,
) (*model.Profile, error) {
	role := domainauth.ParseRoleLoose(rawRole)
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "role must be one of user, lawyer, admin")
	}
	p, err := s.profiles.SetRole(ctx, subjectID, role)
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor, model.AuditActionChangeRole, nil, fmt.Sprintf("set role of %s to %s", p.Email, role))
	sub := domainauth.Subject{ID: p.SubjectID, Email: p.Email}
	s.publish(ctx, ports.AuthEvent{SubjectID: p.SubjectID, Subject: &sub, Cause: ports.CauseRoleChange})
	return p, nil
}

// DeleteUser removes a profile. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor domainauth.Identity, subjectID string) (bool, error) {
	if subjectID == actor.SubjectID {
		return false, apperrors.Validation("You cannot delete your own account.")
	}
	ok, err := s.profiles.Delete(ctx, subjectID)
	if err != nil || !ok {
		return ok, err
	}

	s.audit.record(ctx, actor, model.AuditActionDeleteUser, nil, "deleted user "+subjectID)
	// The subject keeps its session; re-resolving finds no profile and denies.
	sub := domainauth.Subject{ID: subjectID}
	s.publish(ctx, ports.AuthEvent{SubjectID: subjectID, Subject: &sub, Cause: ports.CauseDeleted})
	return true, nil
}

func (s *UserService) publish(ctx context.Context, ev ports.AuthEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to publish auth event",
			"subject_id", ev.SubjectID, "cause", ev.Cause, "error", err)
	}
}
