//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
)

// DateLayout is the wire form of incident dates and the date filter.
const DateLayout = "2006-01-02"

// Report types offered by the filing form. Other values are accepted.
const (
	ReportTypeTheft      = "Theft"
	ReportTypeAssault    = "Assault"
	ReportTypeFraud      = "Fraud"
	ReportTypeHarassment = "Harassment"
)

// Report is a filed case.
type Report struct {
	ID                  string       `json:"id"                              db:"id"`
	OwnerSubjectID      string       `json:"owner_subject_id"                db:"owner_subject_id"`
	OwnerEmail          string       `json:"owner_email"                     db:"owner_email"`
	Type                string       `json:"type"                            db:"type"`
	Description         string       `json:"description"                     db:"description"`
	Location            string       `json:"location"                        db:"location"`
	IncidentDate        *time.Time   `json:"incident_date,omitempty"         db:"incident_date"`
	EvidenceURLs        []string     `json:"evidence_urls"                   db:"evidence_urls"`
	AssignedLawyerID    *string      `json:"assigned_lawyer_id,omitempty"    db:"assigned_lawyer_id"`
	AssignedLawyerEmail *string      `json:"assigned_lawyer_email,omitempty" db:"assigned_lawyer_email"`
	Status              cases.Status `json:"status"                          db:"status"`
	Notes               string       `json:"notes"                           db:"notes"`
	CreatedAt           time.Time    `json:"created_at"                      db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"                      db:"updated_at"`
}

// Record projects the fields the visibility policy needs.
func (r *Report) Record() cases.Record {
	return cases.Record{
		ID:                  r.ID,
		OwnerSubjectID:      r.OwnerSubjectID,
		AssignedLawyerEmail: r.AssignedLawyerEmail,
		Status:              r.Status,
	}
}

// ReportDetail is a report with its display-only annotations.
type ReportDetail struct {
	*Report
	StatusLabel       string     `json:"status_label"`
	OutcomePrediction string     `json:"outcome_prediction"`
	Complexity        string     `json:"complexity"`
	Comments          []*Comment `json:"comments"`
}

// CreateReportRequest is the filing form. Owner fields are set by the caller.
type CreateReportRequest struct {
	OwnerSubjectID string   `json:"-"`
	OwnerEmail     string   `json:"-"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	IncidentDate   string   `json:"incident_date,omitempty"`
	EvidenceURLs   []string `json:"evidence_urls,omitempty"`
}

// Validate validates CreateReportRequest.
func (r *CreateReportRequest) Validate() error {
	if strings.TrimSpace(r.OwnerSubjectID) == "" {
		return errors.New("owner is required")
	}
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return errors.New("type is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	r.Location = strings.TrimSpace(r.Location)
	if _, err := ParseDate(r.IncidentDate); err != nil {
		return err
	}
	if r.EvidenceURLs == nil {
		r.EvidenceURLs = []string{}
	}
	return nil
}

// ParseDate parses an optional YYYY-MM-DD value. Empty yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, errors.New("date must be YYYY-MM-DD")
	}
	return &t, nil
}

// UpdateReportRequest edits the user-supplied fields of a report.
type UpdateReportRequest struct {
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateReportRequest) HasUpdates() bool {
	return r.Type != nil || r.Description != nil || r.Location != nil
}

// Validate validates UpdateReportRequest.
func (r *UpdateReportRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Type != nil && strings.TrimSpace(*r.Type) == "" {
		return errors.New("type cannot be empty")
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return errors.New("description cannot be empty")
	}
	return nil
}

// ReportListOptions scopes and filters a report listing. Owner and
// AssignedLawyerID are set from the caller's role, the rest from the query.
type ReportListOptions struct {
	OwnerSubjectID   *string
	AssignedLawyerID *string
	Type             *string    // exact match
	Date             *time.Time // incident date
	Q                *string    // substring of description or location, case-insensitive
	Limit            int
	Offset           int
}

// AssignLawyerRequest assigns a lawyer to a report.
type AssignLawyerRequest struct {
	LawyerID string `json:"lawyer_id"`
}

// Validate validates AssignLawyerRequest.
func (r *AssignLawyerRequest) Validate() error {
	r.LawyerID = strings.TrimSpace(r.LawyerID)
	if r.LawyerID == "" {
		return errors.New("lawyer_id is required")
	}
	return nil
}

// Assignment is what the store writes when a lawyer is assigned.
type Assignment struct {
	LawyerID    string
	LawyerEmail string
}

// UpdateStatusRequest sets a report status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Parse returns the validated status.
func (r *UpdateStatusRequest) Parse() (cases.Status, error) {
	s, ok := cases.ParseStatus(r.Status)
	if !ok {
		return cases.StatusUnset, errors.New(`status must be one of "In Progress", "Resolved", "Closed"`)
	}
	return s, nil
}

// UpdateNotesRequest replaces the lawyer notes on a report.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}
