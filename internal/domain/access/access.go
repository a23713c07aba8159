// Package access holds the pure role-based access policy: the outcome of
// identity resolution, the allowed-role sets attached to resources, and the
// evaluation that turns the two into a Decision.
package access

import (
	"errors"
	"slices"
	"strings"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

// Denial reasons. The guard surfaces the first four identically; they are kept
// apart for logs and metrics.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNoRole          = errors.New("unauthorized: no role")
	ErrForbidden       = errors.New("forbidden")
	ErrLookupFailure   = errors.New("profile lookup failed")
	ErrNotAssigned     = errors.New("case is not assigned")
	ErrNotOwner        = errors.New("case belongs to another user")
	ErrReadOnly        = errors.New("role may not modify this case")
)

// Decision is the state of a guard for one resource.
type Decision string

const (
	Pending Decision = "pending"
	Allow   Decision = "allow"
	Deny    Decision = "deny"
)

// Settled reports whether the decision is final for the current resolution.
func (d Decision) Settled() bool { return d == Allow || d == Deny }

// Reason labels why a resolution is unauthenticated.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonSignedOut     Reason = "signed_out"
	ReasonNoRole        Reason = "no_role"
	ReasonLookupFailure Reason = "lookup_failure"
)

// Resolution is the result of resolving the current subject: either an
// Identity with a recognized role, or Unauthenticated with a reason.
type Resolution struct {
	identity *domainauth.Identity
	reason   Reason
}

// Resolved wraps an identity. An identity without a recognized role is
// downgraded to Unauthenticated(ReasonNoRole).
func Resolved(id domainauth.Identity) Resolution {
	if !id.Role.Valid() {
		return Unauthenticated(ReasonNoRole)
	}
	return Resolution{identity: &id}
}

// Unauthenticated builds a resolution carrying no identity.
func Unauthenticated(reason Reason) Resolution {
	if reason == ReasonNone {
		reason = ReasonSignedOut
	}
	return Resolution{reason: reason}
}

// Identity returns the resolved identity, if any.
func (r Resolution) Identity() (domainauth.Identity, bool) {
	if r.identity == nil {
		return domainauth.Identity{}, false
	}
	return *r.identity, true
}

// Authenticated reports whether an identity was resolved.
func (r Resolution) Authenticated() bool { return r.identity != nil }

// Reason returns why the resolution is unauthenticated; ReasonNone when it is not.
func (r Resolution) Reason() Reason { return r.reason }

// Err maps the resolution to the error taxonomy. Nil when authenticated.
func (r Resolution) Err() error {
	if r.identity != nil {
		return nil
	}
	switch r.reason {
	case ReasonNoRole:
		return ErrNoRole
	case ReasonLookupFailure:
		return ErrLookupFailure
	default:
		return ErrUnauthenticated
	}
}

// RoleSet is an immutable set of roles attached to a resource at registration.
type RoleSet struct {
	roles []domainauth.Role
}

// NewRoleSet builds a set from roles, dropping duplicates and unrecognized values.
func NewRoleSet(roles ...domainauth.Role) RoleSet {
	out := make([]domainauth.Role, 0, len(roles))
	for _, r := range roles {
		if r.Valid() && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return RoleSet{roles: out}
}

// Contains reports membership.
func (s RoleSet) Contains(r domainauth.Role) bool { return slices.Contains(s.roles, r) }

// Roles returns a copy of the members in sorted order.
func (s RoleSet) Roles() []domainauth.Role { return slices.Clone(s.roles) }

// Empty reports whether no role is allowed.
func (s RoleSet) Empty() bool { return len(s.roles) == 0 }

func (s RoleSet) String() string {
	parts := make([]string, len(s.roles))
	for i, r := range s.roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// Evaluate decides access for a resolution against an allowed-role set.
// It is pure and total: every input yields Allow or Deny, never Pending.
func Evaluate(res Resolution, allowed RoleSet) Decision {
	d, _ := Check(res, allowed)
	return d
}

// Check is Evaluate plus the denial reason for logs and metrics.
func Check(res Resolution, allowed RoleSet) (Decision, error) {
	id, ok := res.Identity()
	if !ok {
		return Deny, res.Err()
	}
	if allowed.Contains(id.Role) {
		return Allow, nil
	}
	return Deny, ErrForbidden
}

// ReasonLabel returns a short metrics label for a denial error.
func ReasonLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNoRole):
		return "no_role"
	case errors.Is(err, ErrLookupFailure):
		return "lookup_failure"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotAssigned):
		return "not_assigned"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	case errors.Is(err, ErrReadOnly):
		return "read_only"
	default:
		return "unauthenticated"
	}
}
