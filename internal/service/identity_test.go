package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crimetracker/crimetracker-api/internal/data"
	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/mocks"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
)

func newTestResolver(t *testing.T) (*mocks.MockProfileRepository, *IdentityResolver) {
	t.Helper()
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileRepository(ctrl)
	return profiles, NewIdentityResolver(IdentityResolverOptions{
		Profiles: profiles,
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
}

func TestIdentityResolver_SignedOut(t *testing.T) {
	_, resolver := newTestResolver(t)

	res := resolver.Resolve(context.Background(), nil)
	assert.False(t, res.Authenticated())
	assert.Equal(t, access.ReasonSignedOut, res.Reason())

	res = resolver.Resolve(context.Background(), &domainauth.Subject{})
	assert.Equal(t, access.ReasonSignedOut, res.Reason())
}

func TestIdentityResolver_Resolved(t *testing.T) {
	profiles, resolver := newTestResolver(t)
	ctx := context.Background()

	profiles.EXPECT().GetBySubjectID(ctx, "u1").
		Return(&model.Profile{SubjectID: "u1", Email: "stored@example.com", Role: domainauth.RoleLawyer}, nil)

	res := resolver.Resolve(ctx, &domainauth.Subject{ID: "u1", Email: "session@example.com"})
	id, ok := res.Identity()
	require.True(t, ok)
	assert.Equal(t, "u1", id.SubjectID)
	assert.Equal(t, "session@example.com", id.Email)
	assert.Equal(t, domainauth.RoleLawyer, id.Role)
}

func TestIdentityResolver_FallsBackToProfileEmail(t *testing.T) {
	profiles, resolver := newTestResolver(t)
	ctx := context.Background()

	profiles.EXPECT().GetBySubjectID(ctx, "u1").
		Return(&model.Profile{SubjectID: "u1", Email: "stored@example.com", Role: domainauth.RoleUser}, nil)

	id, ok := resolver.Resolve(ctx, &domainauth.Subject{ID: "u1"}).Identity()
	require.True(t, ok)
	assert.Equal(t, "stored@example.com", id.Email)
}

func TestIdentityResolver_FailsClosed(t *testing.T) {
	tests := []struct {
		name       string
		profile    *model.Profile
		err        error
		wantReason access.Reason
	}{
		{"no profile", nil, data.ErrProfileNotFound, access.ReasonNoRole},
		{"empty role", &model.Profile{SubjectID: "u1", Role: domainauth.RoleNone}, nil, access.ReasonNoRole},
		{"unknown role", &model.Profile{SubjectID: "u1", Role: domainauth.Role("superuser")}, nil, access.ReasonNoRole},
		{"wrong case role", &model.Profile{SubjectID: "u1", Role: domainauth.Role("Admin")}, nil, access.ReasonNoRole},
		{"lookup failure", nil, errors.New("connection refused"), access.ReasonLookupFailure},
		{"lookup timeout", nil, context.DeadlineExceeded, access.ReasonLookupFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, resolver := newTestResolver(t)
			profiles.EXPECT().GetBySubjectID(gomock.Any(), "u1").Return(tt.profile, tt.err)

			res := resolver.Resolve(context.Background(), &domainauth.Subject{ID: "u1", Email: "u1@example.com"})
			assert.False(t, res.Authenticated())
			assert.Equal(t, tt.wantReason, res.Reason())
			assert.Equal(t, access.Deny, access.Evaluate(res, access.NewRoleSet(domainauth.AllRoles()...)))
		})
	}
}

func TestNewIdentityResolver_PanicsWithoutProfiles(t *testing.T) {
	assert.Panics(t, func() { NewIdentityResolver(IdentityResolverOptions{}) })
}
