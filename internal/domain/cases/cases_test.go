package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

func strPtr(s string) *string { return &s }

func TestAuthorize_Admin(t *testing.T) {
	admin := domainauth.Identity{SubjectID: "a1", Email: "admin@example.com", Role: domainauth.RoleAdmin}
	for _, rec := range []Record{
		{ID: "c1", OwnerSubjectID: "u1"},
		{ID: "c2", OwnerSubjectID: "u2", AssignedLawyerEmail: strPtr("l@example.com")},
	} {
		for _, action := range []Action{ActionView, ActionWork, ActionEdit, ActionAssign} {
			d, err := Authorize(admin, rec, action)
			assert.Equal(t, access.Allow, d)
			assert.NoError(t, err)
		}
	}
}

func TestAuthorize_Lawyer(t *testing.T) {
	lawyer := domainauth.Identity{SubjectID: "l1", Email: "a@x.com", Role: domainauth.RoleLawyer}

	tests := []struct {
		name    string
		rec     Record
		action  Action
		want    access.Decision
		wantErr error
	}{
		{"assigned exact match", Record{ID: "c1", AssignedLawyerEmail: strPtr("a@x.com")}, ActionView, access.Allow, nil},
		{"assigned may work", Record{ID: "c1", AssignedLawyerEmail: strPtr("a@x.com")}, ActionWork, access.Allow, nil},
		{"case differs", Record{ID: "c1", AssignedLawyerEmail: strPtr("A@x.com")}, ActionView, access.Deny, access.ErrForbidden},
		{"other lawyer", Record{ID: "c1", AssignedLawyerEmail: strPtr("b@x.com")}, ActionView, access.Deny, access.ErrForbidden},
		{"unassigned", Record{ID: "c1"}, ActionView, access.Deny, access.ErrNotAssigned},
		{"empty assignment", Record{ID: "c1", AssignedLawyerEmail: strPtr("")}, ActionView, access.Deny, access.ErrNotAssigned},
		{"cannot edit report", Record{ID: "c1", AssignedLawyerEmail: strPtr("a@x.com")}, ActionEdit, access.Deny, access.ErrReadOnly},
		{"cannot assign", Record{ID: "c1", AssignedLawyerEmail: strPtr("a@x.com")}, ActionAssign, access.Deny, access.ErrReadOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Authorize(lawyer, tt.rec, tt.action)
			assert.Equal(t, tt.want, d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorize_User(t *testing.T) {
	owner := domainauth.Identity{SubjectID: "u1", Email: "u1@example.com", Role: domainauth.RoleUser}
	rec := Record{ID: "c1", OwnerSubjectID: "u1", AssignedLawyerEmail: strPtr("l@example.com")}

	d, err := CanView(owner, rec)
	assert.Equal(t, access.Allow, d)
	assert.NoError(t, err)

	d, err = Authorize(owner, rec, ActionEdit)
	assert.Equal(t, access.Allow, d)
	assert.NoError(t, err)

	d, err = Authorize(owner, rec, ActionWork)
	assert.Equal(t, access.Deny, d)
	assert.ErrorIs(t, err, access.ErrReadOnly)

	stranger := domainauth.Identity{SubjectID: "u2", Role: domainauth.RoleUser}
	d, err = CanView(stranger, rec)
	assert.Equal(t, access.Deny, d)
	assert.ErrorIs(t, err, access.ErrNotOwner)
}

func TestAuthorize_NoRole(t *testing.T) {
	d, err := CanView(domainauth.Identity{SubjectID: "u1"}, Record{OwnerSubjectID: "u1"})
	assert.Equal(t, access.Deny, d)
	assert.ErrorIs(t, err, access.ErrNoRole)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("in progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("Pending")
	assert.False(t, ok)

	assert.Equal(t, "Not updated", StatusUnset.Label())
	assert.Equal(t, "Closed", StatusClosed.Label())
	assert.False(t, StatusUnset.Valid())
}
