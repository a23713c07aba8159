package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrProfileExists         = errors.New("profile already exists")
	ErrReportNotFound        = errors.New("report not found")
	ErrWitnessReportNotFound = errors.New("witness report not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrInvalidGroupField     = errors.New("invalid group field")
)
