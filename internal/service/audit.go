package service

import (
	"context"
	"log/slog"

	"github.com/crimetracker/crimetracker-api/internal/core"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// auditRecorder writes audit entries for admin actions. A failed write is
// logged; the action it describes has already happened.
type auditRecorder struct {
	repo   core.AuditLogRepository
	logger *slog.Logger
}

func newAuditRecorder(repo core.AuditLogRepository, logger *slog.Logger) *auditRecorder {
	return &auditRecorder{repo: repo, logger: logger}
}

func (a *auditRecorder) record(ctx context.Context, actor domainauth.Identity, action string, reportID *string, detail string) {
	if a == nil || a.repo == nil {
		return
	}
	_, err := a.repo.Create(ctx, &model.CreateAuditLogRequest{
		ActorID:    actor.SubjectID,
		ActorEmail: actor.Email,
		Action:     action,
		ReportID:   reportID,
		Detail:     detail,
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to write audit log",
			"action", action, "actor_id", actor.SubjectID, "error", err)
	}
}
