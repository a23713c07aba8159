// Package mocks provides gomock implementations of the repository interfaces in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	reports := mocks.NewMockReportRepository(ctrl)
//	reports.EXPECT().GetByID(gomock.Any(), "r1").Return(report, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core ProfileRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=report_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core ReportRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=witness_report_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core WitnessReportRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=comment_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core CommentRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notification_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core NotificationRepository

// Admin-side repositories.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_log_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core AuditLogRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=feedback_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core FeedbackRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/crimetracker/crimetracker-api/internal/core CacheRepository
