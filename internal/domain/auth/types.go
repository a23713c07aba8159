package auth

// Package auth contains domain-level types for authentication, roles and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role is the closed set of application roles stored on a profile.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleUser   Role = "user"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
	// RoleNone means the subject has no usable role (no profile, or an unrecognized value).
	RoleNone Role = ""
)

// AllRoles lists every recognized role.
func AllRoles() []Role { return []Role{RoleUser, RoleLawyer, RoleAdmin} }

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLawyer, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfAssignable reports whether a subject may pick r for themselves at registration.
func (r Role) SelfAssignable() bool { return r == RoleUser || r == RoleLawyer }

// LandingPath returns the page a subject is sent to after sign-in.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleLawyer:
		return "/lawyer-dashboard"
	case RoleUser:
		return "/dashboard"
	default:
		return "/register"
	}
}

// ParseRole maps stored text into the closed enum. Matching is exact; anything
// unrecognized (including "Admin" or " admin") yields RoleNone.
func ParseRole(raw string) Role {
	r := Role(raw)
	if r.Valid() {
		return r
	}
	return RoleNone
}

// ParseRoleLoose is ParseRole for request input: it trims and lowercases first.
func ParseRoleLoose(raw string) Role {
	return ParseRole(strings.ToLower(strings.TrimSpace(raw)))
}

// Subject is the authenticated principal as reported by the auth provider,
// before any role lookup.
type Subject struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ProviderIdentity is what an AuthProvider returns after a successful exchange.
// Adapters map provider-specific claims into this shape.
type ProviderIdentity struct {
	SubjectID   string // stable subject identifier (OIDC sub)
	Email       string
	DisplayName string
	ExpiresAt   time.Time // absolute expiry from IdP token
}

// Identity is a subject whose role has been resolved from its profile.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// Subject returns the provider-level view of the identity.
func (i Identity) Subject() Subject { return Subject{ID: i.SubjectID, Email: i.Email} }

// Session is the server-side record we persist for an authenticated subject.
// ID is an opaque session identifier. Roles are never cached on the session;
// they are resolved from the profile store on every check.
type Session struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Subject returns the authenticated subject carried by the session.
func (s Session) Subject() Subject { return Subject{ID: s.SubjectID, Email: s.Email} }

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
