// Package errors normalizes errors into low-cardinality labels for logs and metrics.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
)

// Classify returns a normalized error type name suitable for tagging metrics/logs.
// Access denials and application errors map to their code; anything else is
// unwrapped to the innermost concrete type and converted to snake_case-ish.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}
	if label := access.ReasonLabel(err); label != "unauthenticated" || goerrors.Is(err, access.ErrUnauthenticated) {
		return "access_" + label
	}
	if code := apperrors.GetCode(err); code != "" {
		return "app_" + string(code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
