package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(MapDBError(tt.err)); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "email"},
			wantField: "email",
		},
		{
			name: "profile already registered",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "profiles_pkey",
				Detail:         "Key (subject_id)=(abc) already exists.",
			},
			wantField: "subject_id",
		},
		{
			name:  "no field information",
			pgErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "profiles_pkey"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("code = %v, want conflict", GetCode(err))
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) {
				t.Error("cause should unwrap to *pgconn.PgError")
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantMsg   string
		wantField string
	}{
		{
			name: "comment on a missing case",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "report_comments_report_id_fkey",
				Detail:         `Key (report_id)=(8d5e) is not present in table "reports".`,
			},
			wantMsg:   "The referenced case does not exist.",
			wantField: "report_id",
		},
		{
			name:    "constraint only",
			pgErr:   &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "notifications_report_id_fkey"},
			wantMsg: "The referenced case does not exist.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != ErrCodeForeignKey {
				t.Fatalf("code = %v, want foreign_key", GetCode(err))
			}
			if got := Message(err, ""); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestMapDBError_CheckViolation(t *testing.T) {
	tests := []struct {
		constraint string
		wantField  string
	}{
		{"reports_status_check", "status"},
		{"profiles_theme_check", "theme"},
		{"notifications_kind_check", "kind"},
		{"unknown_check", ""},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: tt.constraint})
			if !IsValidation(err) {
				t.Fatalf("code = %v, want validation", GetCode(err))
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "description"})
	if !IsValidation(err) {
		t.Fatalf("code = %v, want validation", GetCode(err))
	}
	if GetField(err) != "description" {
		t.Errorf("field = %q, want description", GetField(err))
	}
	if got := Message(err, ""); got != "description is required." {
		t.Errorf("message = %q", got)
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	if GetCode(err) != ErrCodeInternal {
		t.Errorf("code = %v, want internal", GetCode(err))
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	orig := errors.New("boom")
	if err := MapDBError(orig); err != orig {
		t.Errorf("MapDBError should return unrecognized errors unchanged, got %v", err)
	}
}
