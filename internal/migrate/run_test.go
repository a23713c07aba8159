package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTableRE = regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")
	existsRE      = regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")
	insertRE      = regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/002_second.sql": {Data: []byte("CREATE TABLE b (id INT)")},
		"migrations/001_first.sql":  {Data: []byte("CREATE TABLE a (id INT)")},
		"migrations/README.md":      {Data: []byte("ignored")},
	}
}

func TestRunFS_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(createTableRE).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(existsRE).WithArgs("001_first").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(existsRE).WithArgs("002_second").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertRE).WithArgs("002_second").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, RunFS(context.Background(), db, testFS(), discardLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunFS_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(createTableRE).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsRE).WithArgs("001_first").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = RunFS(context.Background(), db, testFS(), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec migration 001_first.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := listMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_initial_schema.sql", files[0])
}
