// Package cases defines the case record used by the visibility policy and the
// rules deciding who may view or modify a case.
package cases

import (
	"strings"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

// Status is the lifecycle state of a case. The wire form matches what the
// lawyer dashboard submits.
type Status string

const (
	StatusUnset      Status = ""
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Valid reports whether s is a settable status. Unset is not settable.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// Label returns the display text for the status.
func (s Status) Label() string {
	if s == StatusUnset {
		return "Not updated"
	}
	return string(s)
}

// ParseStatus accepts the wire form case-insensitively ("in progress" works).
func ParseStatus(raw string) (Status, bool) {
	v := strings.TrimSpace(raw)
	for _, s := range []Status{StatusInProgress, StatusResolved, StatusClosed} {
		if strings.EqualFold(v, string(s)) {
			return s, true
		}
	}
	return StatusUnset, false
}

// Record is the slice of a report the visibility policy needs.
type Record struct {
	ID                  string
	OwnerSubjectID      string
	AssignedLawyerEmail *string
	Status              Status
}

// Assigned reports whether a lawyer is assigned.
func (r Record) Assigned() bool { return r.AssignedLawyerEmail != nil && *r.AssignedLawyerEmail != "" }

// Action is what an identity wants to do with a case.
type Action string

const (
	ActionView Action = "view"
	// ActionWork covers status updates, notes and comments.
	ActionWork Action = "work"
	// ActionEdit covers editing or deleting the report itself.
	ActionEdit Action = "edit"
	// ActionAssign covers lawyer assignment.
	ActionAssign Action = "assign"
)

// Authorize decides whether id may perform action on rec. Denials carry an
// error from the access taxonomy; these are in-page denials, not redirects.
func Authorize(id domainauth.Identity, rec Record, action Action) (access.Decision, error) {
	switch id.Role {
	case domainauth.RoleAdmin:
		return access.Allow, nil
	case domainauth.RoleLawyer:
		return authorizeLawyer(id, rec, action)
	case domainauth.RoleUser:
		return authorizeUser(id, rec, action)
	default:
		return access.Deny, access.ErrNoRole
	}
}

// CanView is Authorize for ActionView.
func CanView(id domainauth.Identity, rec Record) (access.Decision, error) {
	return Authorize(id, rec, ActionView)
}

func authorizeLawyer(id domainauth.Identity, rec Record, action Action) (access.Decision, error) {
	if action == ActionEdit || action == ActionAssign {
		return access.Deny, access.ErrReadOnly
	}
	if !rec.Assigned() {
		return access.Deny, access.ErrNotAssigned
	}
	// Exact match; emails are not case-folded.
	if id.Email == "" || id.Email != *rec.AssignedLawyerEmail {
		return access.Deny, access.ErrForbidden
	}
	return access.Allow, nil
}

func authorizeUser(id domainauth.Identity, rec Record, action Action) (access.Decision, error) {
	if id.SubjectID == "" || id.SubjectID != rec.OwnerSubjectID {
		return access.Deny, access.ErrNotOwner
	}
	switch action {
	case ActionView, ActionEdit:
		return access.Allow, nil
	default:
		return access.Deny, access.ErrReadOnly
	}
}
