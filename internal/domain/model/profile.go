//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

const maxDisplayNameLen = 120

// ErrDisplayNameRequired is returned when a display name is blank.
var ErrDisplayNameRequired = errors.New("display name cannot be empty")

// Theme is the UI theme stored on a profile.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is supported.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Profile is the per-subject record holding the role.
type Profile struct {
	SubjectID   string          `json:"subject_id"          db:"subject_id"`
	Email       string          `json:"email"               db:"email"`
	DisplayName string          `json:"display_name"        db:"display_name"`
	Role        domainauth.Role `json:"role"                db:"role"`
	PhotoURL    *string         `json:"photo_url,omitempty" db:"photo_url"`
	Theme       Theme           `json:"theme"               db:"theme"`
	CreatedAt   time.Time       `json:"created_at"          db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"          db:"updated_at"`
}

// CreateProfileRequest creates a profile on registration.
type CreateProfileRequest struct {
	SubjectID   string          `json:"-"`
	Email       string          `json:"-"`
	DisplayName string          `json:"display_name"`
	Role        domainauth.Role `json:"role"`
}

// Validate normalizes and checks the request.
func (r *CreateProfileRequest) Validate() error {
	if strings.TrimSpace(r.SubjectID) == "" {
		return errors.New("subject_id is required")
	}
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > maxDisplayNameLen {
		return errors.New("display name cannot exceed 120 characters")
	}
	r.Role = domainauth.ParseRoleLoose(string(r.Role))
	if !r.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

// UpdateProfileRequest carries self-service profile settings.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Theme       *Theme  `json:"theme,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateProfileRequest) HasUpdates() bool {
	return r.DisplayName != nil || r.PhotoURL != nil || r.Theme != nil
}

// Validate validates UpdateProfileRequest.
func (r *UpdateProfileRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.DisplayName != nil {
		n := strings.TrimSpace(*r.DisplayName)
		if n == "" {
			return ErrDisplayNameRequired
		}
		if utf8.RuneCountInString(n) > maxDisplayNameLen {
			return errors.New("display name cannot exceed 120 characters")
		}
		*r.DisplayName = n
	}
	if r.Theme != nil {
		t := Theme(strings.ToLower(strings.TrimSpace(string(*r.Theme))))
		if !t.Valid() {
			return errors.New("invalid theme")
		}
		*r.Theme = t
	}
	return nil
}

// ProfileListOptions filters the admin user listing.
type ProfileListOptions struct {
	Role   *domainauth.Role
	Limit  int
	Offset int
}
