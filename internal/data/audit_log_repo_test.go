package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

var auditCols = []string{"id", "actor_id", "actor_email", "action", "report_id", "detail", "created_at"}

func TestAuditLogRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := NewAuditLogRepoWithTimeProvider(db, NewFixedTimeProvider(now))
	reportID := "7c1d5f0e-9a4b-4a55-8d0e-0f3f5a2b6c11"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs("admin-1", "admin@example.com", model.AuditActionAssignLawyer, &reportID, "lawyer l@example.com", now).
		WillReturnRows(sqlmock.NewRows(auditCols).AddRow(
			"a1", "admin-1", "admin@example.com", model.AuditActionAssignLawyer, reportID, "lawyer l@example.com", now))

	got, err := repo.Create(context.Background(), &model.CreateAuditLogRequest{
		ActorID:    "admin-1",
		ActorEmail: "admin@example.com",
		Action:     model.AuditActionAssignLawyer,
		ReportID:   &reportID,
		Detail:     "lawyer l@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	require.NotNil(t, got.ReportID)
	assert.Equal(t, reportID, *got.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepo_Create_RequiresActor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewAuditLogRepo(db).Create(context.Background(), &model.CreateAuditLogRequest{Action: "x"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(auditCols).
			AddRow("a2", "admin-1", "admin@example.com", model.AuditActionChangeRole, nil, "u1 -> lawyer", now).
			AddRow("a1", "admin-1", "admin@example.com", model.AuditActionDeleteUser, nil, "u2", now.Add(-time.Minute)))

	got, err := NewAuditLogRepo(db).List(context.Background(), 0, -5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Nil(t, got[0].ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepo_List_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs")).WillReturnError(errors.New("boom"))

	_, err = NewAuditLogRepo(db).List(context.Background(), 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list audit logs")
	assert.NoError(t, mock.ExpectationsWereMet())
}
