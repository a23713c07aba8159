package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
)

func TestCreateReportRequest_Validate(t *testing.T) {
	req := CreateReportRequest{OwnerSubjectID: "u1", Type: " Theft ", Description: "bike", IncidentDate: "2024-03-01"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Theft", req.Type)
	assert.NotNil(t, req.EvidenceURLs)

	bad := CreateReportRequest{OwnerSubjectID: "u1", Type: "Theft", Description: "bike", IncidentDate: "03/01/2024"}
	assert.Error(t, bad.Validate())

	missing := CreateReportRequest{OwnerSubjectID: "u1", Type: "Theft"}
	assert.Error(t, missing.Validate())
}

func TestReport_Record(t *testing.T) {
	email := "l@example.com"
	r := Report{ID: "r1", OwnerSubjectID: "u1", AssignedLawyerEmail: &email, Status: cases.StatusResolved}
	rec := r.Record()
	assert.Equal(t, "r1", rec.ID)
	assert.True(t, rec.Assigned())
	assert.Equal(t, cases.StatusResolved, rec.Status)
}

func TestUpdateStatusRequest_Parse(t *testing.T) {
	s, err := (&UpdateStatusRequest{Status: "Resolved"}).Parse()
	require.NoError(t, err)
	assert.Equal(t, cases.StatusResolved, s)

	_, err = (&UpdateStatusRequest{Status: ""}).Parse()
	assert.Error(t, err)
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	blank := "   "
	err := (&UpdateProfileRequest{DisplayName: &blank}).Validate()
	assert.ErrorIs(t, err, ErrDisplayNameRequired)

	name := " Ada "
	theme := Theme("DARK")
	req := UpdateProfileRequest{DisplayName: &name, Theme: &theme}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Ada", *req.DisplayName)
	assert.Equal(t, ThemeDark, *req.Theme)

	assert.Error(t, (&UpdateProfileRequest{}).Validate())
}

func TestCreateProfileRequest_Validate(t *testing.T) {
	req := CreateProfileRequest{SubjectID: "u1", Role: "Lawyer"}
	require.NoError(t, req.Validate())
	assert.Equal(t, domainauth.RoleLawyer, req.Role)

	assert.Error(t, (&CreateProfileRequest{SubjectID: "u1", Role: "root"}).Validate())
}

func TestCreateFeedbackRequest_Validate(t *testing.T) {
	err := (&CreateFeedbackRequest{Message: "  "}).Validate()
	assert.ErrorIs(t, err, ErrFeedbackMessageRequired)
	assert.Equal(t, "Please enter your feedback.", err.Error())

	empty := ""
	req := CreateFeedbackRequest{Name: &empty, Message: "great app"}
	require.NoError(t, req.Validate())
	assert.Nil(t, req.Name)
}

func TestCreateNotificationRequest_Validate(t *testing.T) {
	req := CreateNotificationRequest{RecipientID: "u1", Message: "hi"}
	require.NoError(t, req.Validate())
	assert.Equal(t, NotificationKindInfo, req.Kind)

	assert.Error(t, (&CreateNotificationRequest{RecipientID: "u1", Message: "hi", Kind: "sms"}).Validate())
}

func TestCreateCommentRequest_Validate(t *testing.T) {
	assert.Error(t, (&CreateCommentRequest{Body: " "}).Validate())
	url := "https://files/x.pdf"
	assert.NoError(t, (&CreateCommentRequest{FileURL: &url}).Validate())
}
