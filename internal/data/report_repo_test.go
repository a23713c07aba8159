package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/testutil"
)

func TestReportRepo_Create_GetByID(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewReportRepo(db)
		ctx := context.Background()

		req := testutil.NewReportRequest("owner-1", "owner@example.com").
			WithEvidence("https://evidence.test/a.jpg").
			Build()
		r, err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, cases.StatusUnset, r.Status)
		assert.Equal(t, []string{"https://evidence.test/a.jpg"}, r.EvidenceURLs)
		require.NotNil(t, r.IncidentDate)
		assert.Equal(t, "2024-03-01", r.IncidentDate.Format(model.DateLayout))

		got, err := repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)

		_, err = repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

func TestReportRepo_List_Filters(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewReportRepo(db)
		ctx := context.Background()

		_, err := repo.Create(ctx, testutil.NewReportRequest("owner-1", "a@example.com").
			WithLocation("Harbor Road").Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewReportRequest("owner-1", "a@example.com").
			WithType(model.ReportTypeAssault).WithDescription("fight at 50% off sale").
			WithIncidentDate("2024-04-02").Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewReportRequest("owner-2", "b@example.com").Build())
		require.NoError(t, err)

		owner := "owner-1"
		mine, err := repo.List(ctx, model.ReportListOptions{OwnerSubjectID: &owner})
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		assault := model.ReportTypeAssault
		byType, err := repo.List(ctx, model.ReportListOptions{Type: &assault})
		require.NoError(t, err)
		require.Len(t, byType, 1)

		date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
		byDate, err := repo.List(ctx, model.ReportListOptions{Date: &date})
		require.NoError(t, err)
		assert.Len(t, byDate, 1)

		q := "harbor"
		byQ, err := repo.List(ctx, model.ReportListOptions{Q: &q})
		require.NoError(t, err)
		assert.Len(t, byQ, 1)

		pct := "50%"
		byPct, err := repo.List(ctx, model.ReportListOptions{Q: &pct})
		require.NoError(t, err)
		assert.Len(t, byPct, 1)
	})
}

func TestReportRepo_Assign_Status_Notes(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewReportRepo(db)
		ctx := context.Background()

		r, err := repo.Create(ctx, testutil.NewReportRequest("owner-1", "a@example.com").Build())
		require.NoError(t, err)

		assigned, err := repo.Assign(ctx, r.ID, model.Assignment{LawyerID: "lawyer-1", LawyerEmail: "l@example.com"})
		require.NoError(t, err)
		require.NotNil(t, assigned.AssignedLawyerEmail)
		assert.Equal(t, "l@example.com", *assigned.AssignedLawyerEmail)
		assert.True(t, assigned.Record().Assigned())

		lawyerID := "lawyer-1"
		list, err := repo.List(ctx, model.ReportListOptions{AssignedLawyerID: &lawyerID})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		updated, err := repo.SetStatus(ctx, r.ID, cases.StatusResolved)
		require.NoError(t, err)
		assert.Equal(t, cases.StatusResolved, updated.Status)

		_, err = repo.SetStatus(ctx, r.ID, cases.Status("Pending"))
		require.Error(t, err)

		noted, err := repo.SetNotes(ctx, r.ID, "called the witness")
		require.NoError(t, err)
		assert.Equal(t, "called the witness", noted.Notes)
	})
}

func TestReportRepo_Update_Delete_Counts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewReportRepo(db)
		ctx := context.Background()

		r, err := repo.Create(ctx, testutil.NewReportRequest("owner-1", "a@example.com").Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewReportRequest("owner-1", "a@example.com").
			WithType(model.ReportTypeFraud).Build())
		require.NoError(t, err)

		edited, err := repo.Update(ctx, r.ID, model.UpdateReportRequest{Location: testutil.StringPtr("  Elm St ")})
		require.NoError(t, err)
		assert.Equal(t, "Elm St", edited.Location)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		byType, err := repo.CountBy(ctx, "type")
		require.NoError(t, err)
		assert.Equal(t, []model.CountBucket{
			{Key: model.ReportTypeFraud, Count: 1},
			{Key: model.ReportTypeTheft, Count: 1},
		}, byType)

		_, err = repo.CountBy(ctx, "owner_email")
		assert.ErrorIs(t, err, ErrInvalidGroupField)

		deleted, err := repo.Delete(ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "not-a-uuid")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
