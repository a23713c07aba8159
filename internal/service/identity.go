package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/data"
	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
)

// SubjectResolver turns an authenticated subject (or nil for signed out)
// into a resolution. Implementations never return an error; failures become
// Unauthenticated with a reason.
type SubjectResolver interface {
	Resolve(ctx context.Context, subject *domainauth.Subject) access.Resolution
}

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Profiles core.ProfileLookup
	Metrics  *metrics.Metrics // Optional
	Logger   *slog.Logger     // Optional
}

// IdentityResolver resolves a subject's role from its profile, failing closed.
type IdentityResolver struct {
	profiles core.ProfileLookup
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ SubjectResolver = (*IdentityResolver)(nil)

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	if opts.Profiles == nil {
		panic("ProfileLookup is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityResolver{
		profiles: opts.Profiles,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "identity_resolver"),
	}
}

// Resolve looks up the subject's profile. A missing profile, a missing or
// unrecognized role and a failed lookup all resolve to Unauthenticated.
func (r *IdentityResolver) Resolve(ctx context.Context, subject *domainauth.Subject) access.Resolution {
	if subject == nil || subject.ID == "" {
		r.metrics.IdentityResolution(string(access.ReasonSignedOut), nil)
		return access.Unauthenticated(access.ReasonSignedOut)
	}

	profile, err := r.profiles.GetBySubjectID(ctx, subject.ID)
	switch {
	case errors.Is(err, data.ErrProfileNotFound):
		return r.noRole(ctx, subject.ID, "profile not found")
	case err != nil:
		r.logger.WarnContext(ctx, "identity resolution failed",
			"subject_id", subject.ID, "reason", access.ReasonLookupFailure, "error", err)
		r.metrics.IdentityResolution(string(access.ReasonLookupFailure), err)
		return access.Unauthenticated(access.ReasonLookupFailure)
	}

	role := domainauth.ParseRole(string(profile.Role))
	if !role.Valid() {
		return r.noRole(ctx, subject.ID, "role missing or unrecognized")
	}

	email := subject.Email
	if email == "" {
		email = profile.Email
	}
	r.metrics.IdentityResolution("resolved", nil)
	return access.Resolved(domainauth.Identity{SubjectID: subject.ID, Email: email, Role: role})
}

func (r *IdentityResolver) noRole(ctx context.Context, subjectID, detail string) access.Resolution {
	r.logger.WarnContext(ctx, "identity resolution failed",
		"subject_id", subjectID, "reason", access.ReasonNoRole, "detail", detail)
	r.metrics.IdentityResolution(string(access.ReasonNoRole), nil)
	return access.Unauthenticated(access.ReasonNoRole)
}
