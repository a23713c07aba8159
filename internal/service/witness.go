package service

import (
	"context"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
)

// WitnessServiceOptions groups dependencies for WitnessService.
type WitnessServiceOptions struct {
	Repo core.WitnessReportRepository
}

// WitnessService manages witness reports. Users see and change their own;
// admins see and change all of them.
type WitnessService struct {
	repo core.WitnessReportRepository
}

// NewWitnessService constructs a new WitnessService.
func NewWitnessService(opts WitnessServiceOptions) *WitnessService {
	if opts.Repo == nil {
		panic("WitnessReportRepository is required")
	}
	return &WitnessService{repo: opts.Repo}
}

// Create files a witness report owned by actor.
func (s *WitnessService) Create(
	ctx context.Context,
	actor domainauth.Identity,
	req *model.CreateWitnessReportRequest,
) (*model.WitnessReport, error) {
	req.OwnerSubjectID = actor.SubjectID
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.repo.Create(ctx, req)
}

// List returns every witness report for admins and the actor's own otherwise.
func (s *WitnessService) List(
	ctx context.Context,
	actor domainauth.Identity,
	opts model.WitnessReportListOptions,
) ([]*model.WitnessReport, error) {
	switch actor.Role {
	case domainauth.RoleAdmin:
		opts.OwnerSubjectID = nil
	case domainauth.RoleUser:
		opts.OwnerSubjectID = &actor.SubjectID
	default:
		return nil, apperrors.FromAccess(access.ErrForbidden)
	}
	if opts.Limit <= 0 || opts.Limit > maxReportLimit {
		opts.Limit = defaultReportLimit
	}
	return s.repo.List(ctx, opts)
}

// UpdateTestimony edits the testimony of a witness report.
func (s *WitnessService) UpdateTestimony(
	ctx context.Context,
	actor domainauth.Identity,
	id string,
	req model.UpdateWitnessReportRequest,
) (*model.WitnessReport, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateTestimony(ctx, id, req.Testimony)
}

// Delete removes a witness report.
func (s *WitnessService) Delete(ctx context.Context, actor domainauth.Identity, id string) (bool, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

func (s *WitnessService) authorize(ctx context.Context, actor domainauth.Identity, id string) error {
	if actor.Role == domainauth.RoleAdmin {
		return nil
	}
	if actor.Role != domainauth.RoleUser {
		return apperrors.FromAccess(access.ErrReadOnly)
	}
	wr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wr.OwnerSubjectID != actor.SubjectID {
		return apperrors.FromAccess(access.ErrNotOwner)
	}
	return nil
}
