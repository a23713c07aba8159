//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// WitnessReport is a statement filed by a witness, optionally tied to a report.
type WitnessReport struct {
	ID             string    `json:"id"                  db:"id"`
	OwnerSubjectID string    `json:"owner_subject_id"    db:"owner_subject_id"`
	ReportID       *string   `json:"report_id,omitempty" db:"report_id"`
	WitnessName    string    `json:"witness_name"        db:"witness_name"`
	Testimony      string    `json:"testimony"           db:"testimony"`
	FileURL        *string   `json:"file_url,omitempty"  db:"file_url"`
	CreatedAt      time.Time `json:"created_at"          db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"          db:"updated_at"`
}

// CreateWitnessReportRequest files a witness report.
type CreateWitnessReportRequest struct {
	OwnerSubjectID string  `json:"-"`
	ReportID       *string `json:"report_id,omitempty"`
	WitnessName    string  `json:"witness_name"`
	Testimony      string  `json:"testimony"`
	FileURL        *string `json:"file_url,omitempty"`
}

// Validate validates CreateWitnessReportRequest.
func (r *CreateWitnessReportRequest) Validate() error {
	if strings.TrimSpace(r.OwnerSubjectID) == "" {
		return errors.New("owner is required")
	}
	r.WitnessName = strings.TrimSpace(r.WitnessName)
	if r.WitnessName == "" {
		return errors.New("witness_name is required")
	}
	if strings.TrimSpace(r.Testimony) == "" {
		return errors.New("testimony is required")
	}
	if r.ReportID != nil && strings.TrimSpace(*r.ReportID) == "" {
		r.ReportID = nil
	}
	return nil
}

// UpdateWitnessReportRequest edits the testimony.
type UpdateWitnessReportRequest struct {
	Testimony string `json:"testimony"`
}

// Validate validates UpdateWitnessReportRequest.
func (r *UpdateWitnessReportRequest) Validate() error {
	if strings.TrimSpace(r.Testimony) == "" {
		return errors.New("testimony cannot be empty")
	}
	return nil
}

// WitnessReportListOptions scopes a witness report listing.
type WitnessReportListOptions struct {
	OwnerSubjectID *string
	Limit          int
	Offset         int
}
