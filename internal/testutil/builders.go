// Package testutil provides testing utilities and helpers for the crimetracker API.
package testutil

import (
	"fmt"
	"sync/atomic"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

var seq atomic.Int64

// UniqueSuffix returns a process-unique suffix for test identifiers.
func UniqueSuffix() string {
	return fmt.Sprintf("%d", seq.Add(1))
}

// ProfileRequestBuilder provides a fluent interface for building CreateProfileRequest objects for testing.
type ProfileRequestBuilder struct {
	req *model.CreateProfileRequest
}

// NewProfileRequest creates a ProfileRequestBuilder for a user with a unique subject.
func NewProfileRequest() *ProfileRequestBuilder {
	n := UniqueSuffix()
	return &ProfileRequestBuilder{
		req: &model.CreateProfileRequest{
			SubjectID:   "subject-" + n,
			Email:       "user" + n + "@example.com",
			DisplayName: "Test User " + n,
			Role:        domainauth.RoleUser,
		},
	}
}

// WithSubjectID sets the subject identifier.
func (b *ProfileRequestBuilder) WithSubjectID(id string) *ProfileRequestBuilder {
	b.req.SubjectID = id
	return b
}

// WithEmail sets the email.
func (b *ProfileRequestBuilder) WithEmail(email string) *ProfileRequestBuilder {
	b.req.Email = email
	return b
}

// WithRole sets the role.
func (b *ProfileRequestBuilder) WithRole(role domainauth.Role) *ProfileRequestBuilder {
	b.req.Role = role
	return b
}

// Build returns the built request.
func (b *ProfileRequestBuilder) Build() *model.CreateProfileRequest {
	return b.req
}

// LawyerProfileRequest returns a lawyer profile request.
func LawyerProfileRequest() *model.CreateProfileRequest {
	return NewProfileRequest().WithRole(domainauth.RoleLawyer).Build()
}

// AdminProfileRequest returns an admin profile request.
func AdminProfileRequest() *model.CreateProfileRequest {
	return NewProfileRequest().WithRole(domainauth.RoleAdmin).Build()
}

// ReportRequestBuilder provides a fluent interface for building CreateReportRequest objects for testing.
type ReportRequestBuilder struct {
	req *model.CreateReportRequest
}

// NewReportRequest creates a ReportRequestBuilder with sensible defaults.
func NewReportRequest(ownerSubjectID, ownerEmail string) *ReportRequestBuilder {
	return &ReportRequestBuilder{
		req: &model.CreateReportRequest{
			OwnerSubjectID: ownerSubjectID,
			OwnerEmail:     ownerEmail,
			Type:           model.ReportTypeTheft,
			Description:    "bicycle taken from the rack outside the library",
			Location:       "Main Street",
			IncidentDate:   "2024-03-01",
			EvidenceURLs:   []string{},
		},
	}
}

// WithType sets the report type.
func (b *ReportRequestBuilder) WithType(reportType string) *ReportRequestBuilder {
	b.req.Type = reportType
	return b
}

// WithDescription sets the description.
func (b *ReportRequestBuilder) WithDescription(desc string) *ReportRequestBuilder {
	b.req.Description = desc
	return b
}

// WithLocation sets the location.
func (b *ReportRequestBuilder) WithLocation(loc string) *ReportRequestBuilder {
	b.req.Location = loc
	return b
}

// WithIncidentDate sets the incident date (YYYY-MM-DD).
func (b *ReportRequestBuilder) WithIncidentDate(date string) *ReportRequestBuilder {
	b.req.IncidentDate = date
	return b
}

// WithEvidence sets the evidence URLs.
func (b *ReportRequestBuilder) WithEvidence(urls ...string) *ReportRequestBuilder {
	b.req.EvidenceURLs = urls
	return b
}

// Build returns the built request.
func (b *ReportRequestBuilder) Build() *model.CreateReportRequest {
	return b.req
}
