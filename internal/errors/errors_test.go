package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeUnavailable, "profile store unavailable")

	if got := err.Error(); got != "profile store unavailable: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if NotFound("missing").Error() != "missing" {
		t.Error("Error() without cause should be the message")
	}
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{NotFoundf("report %s not found", "r1"), ErrCodeNotFound, "report r1 not found"},
		{Conflict("exists"), ErrCodeConflict, "exists"},
		{Validationf("bad %d", 1), ErrCodeValidation, "bad 1"},
		{Forbidden("no"), ErrCodeForbidden, "no"},
		{Internal("oops"), ErrCodeInternal, "oops"},
		{Validation("100% required"), ErrCodeValidation, "100% required"},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code || tt.err.Message != tt.msg {
			t.Errorf("got (%s, %q), want (%s, %q)", tt.err.Code, tt.err.Message, tt.code, tt.msg)
		}
	}
	f := ValidationField("status", "invalid")
	if GetField(fmt.Errorf("wrapped: %w", f)) != "status" {
		t.Error("GetField should see through wrapping")
	}
}

func TestFromAccess(t *testing.T) {
	tests := []struct {
		in     error
		code   ErrorCode
		status int
	}{
		{access.ErrUnauthenticated, ErrCodeUnauthenticated, http.StatusUnauthorized},
		{access.ErrNoRole, ErrCodeForbidden, http.StatusForbidden},
		{access.ErrLookupFailure, ErrCodeUnavailable, http.StatusServiceUnavailable},
		{access.ErrNotAssigned, ErrCodeForbidden, http.StatusForbidden},
		{access.ErrNotOwner, ErrCodeForbidden, http.StatusForbidden},
		{access.ErrReadOnly, ErrCodeForbidden, http.StatusForbidden},
		{fmt.Errorf("case c1: %w", access.ErrForbidden), ErrCodeForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		err := FromAccess(tt.in)
		if GetCode(err) != tt.code {
			t.Errorf("FromAccess(%v) code = %v, want %v", tt.in, GetCode(err), tt.code)
		}
		if HTTPStatus(err) != tt.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.in, HTTPStatus(err), tt.status)
		}
		if !errors.Is(err, tt.in) {
			t.Errorf("FromAccess(%v) should wrap the original", tt.in)
		}
	}

	plain := errors.New("plain")
	if FromAccess(plain) != plain || FromAccess(nil) != nil {
		t.Error("non-access errors should pass through")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Validation("x"), http.StatusBadRequest},
		{&AppError{Code: ErrCodeTimeout}, http.StatusGatewayTimeout},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if Message(errors.New("raw"), "fallback") != "fallback" {
		t.Error("non-AppError should use fallback")
	}
	if Message(fmt.Errorf("ctx: %w", NotFound("Report not found")), "fallback") != "Report not found" {
		t.Error("wrapped AppError message should be returned")
	}
}
