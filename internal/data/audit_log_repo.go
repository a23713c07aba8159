package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// AuditLogRepo records administrative actions. It uses database/sql directly
// so it works with any driver, including sqlmock in tests.
type AuditLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditLogRepo creates a new AuditLogRepo.
func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAuditLogRepoWithTimeProvider creates an AuditLogRepo with a custom time provider.
func NewAuditLogRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AuditLogRepo {
	return &AuditLogRepo{DB: db, timeProvider: tp}
}

// Create records an action.
func (r *AuditLogRepo) Create(ctx context.Context, req *model.CreateAuditLogRequest) (*model.AuditLog, error) {
	if req == nil {
		return nil, errors.New("create audit log request is required")
	}
	if req.ActorID == "" || req.Action == "" {
		return nil, errors.New("actor_id and action are required")
	}
	var out model.AuditLog
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO audit_logs (actor_id, actor_email, action, report_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, actor_id, actor_email, action, report_id, detail, created_at`,
		req.ActorID, req.ActorEmail, req.Action, req.ReportID, req.Detail, r.timeProvider.Now().UTC(),
	).Scan(&out.ID, &out.ActorID, &out.ActorEmail, &out.Action, &out.ReportID, &out.Detail, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}
	return &out, nil
}

// List returns audit entries newest first.
func (r *AuditLogRepo) List(ctx context.Context, limit, offset int) (_ []*model.AuditLog, err error) {
	limit, offset = pageBounds(limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, actor_id, actor_email, action, report_id, detail, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	out := []*model.AuditLog{}
	for rows.Next() {
		var l model.AuditLog
		if scanErr := rows.Scan(&l.ID, &l.ActorID, &l.ActorEmail, &l.Action, &l.ReportID, &l.Detail, &l.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan audit log: %w", scanErr)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}
