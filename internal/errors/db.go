package errors

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (subject_id)=(abc) already exists." / "Key (report_id)=(...) is not present in table "reports"."
	reKeyField   = regexp.MustCompile(`Key \(([^)]+)\)=`)
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// checkFields names the column behind each CHECK constraint in the schema.
// Postgres reports only the constraint name for check violations.
var checkFields = map[string]string{
	"profiles_theme_check":     "theme",
	"reports_status_check":     "status",
	"notifications_kind_check": "kind",
}

// parentNames is how a referenced table is named to users. Every foreign key
// in the schema points at reports.
var parentNames = map[string]string{
	"reports": "case",
}

// MapDBError maps database errors to AppError instances: no rows to
// NotFound, unique and foreign key violations to Conflict and ForeignKey,
// check and NOT NULL violations to Validation, and context errors to
// Timeout/Canceled. Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   violatedColumn(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation:
		field := checkFields[pgErr.ConstraintName]
		msg := "Invalid data. Please check your input."
		if field != "" {
			msg = "Invalid value for " + field + "."
		}
		return &AppError{Code: ErrCodeValidation, Message: msg, Field: field, Cause: pgErr}
	case pgerrcode.NotNullViolation:
		msg := "Required field is missing. Please check your input."
		if pgErr.ColumnName != "" {
			msg = pgErr.ColumnName + " is required."
		}
		return &AppError{Code: ErrCodeValidation, Message: msg, Field: pgErr.ColumnName, Cause: pgErr}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// violatedColumn prefers column metadata and falls back to the Detail text.
func violatedColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return ""
}

// mapForeignKeyViolation handles inserts that name a missing parent. Deleting
// a case cascades or nulls its children, so the parent side never fails.
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	parent := "case"
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		if name, ok := parentNames[m[1]]; ok {
			parent = name
		} else {
			parent = m[1]
		}
	}
	return &AppError{
		Code:    ErrCodeForeignKey,
		Message: "The referenced " + parent + " does not exist.",
		Field:   violatedColumn(pgErr),
		Cause:   pgErr,
	}
}
