package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crimetracker/crimetracker-api/internal/data/database"
	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

var reportColumnList = []string{
	"id", "owner_subject_id", "owner_email", "type", "description", "location", "incident_date",
	"evidence_urls", "assigned_lawyer_id", "assigned_lawyer_email", "status", "notes", "created_at", "updated_at",
}

var reportColumns = strings.Join(reportColumnList, ", ")

// reportGroupExprs whitelists the CountBy fields.
var reportGroupExprs = map[string]string{
	"type":          "type",
	"status":        "status",
	"incident_date": "COALESCE(to_char(incident_date, 'YYYY-MM-DD'), '')",
}

// ReportRepo provides database operations for reports.
type ReportRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewReportRepo creates a new ReportRepo with real time provider.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewReportRepoWithTimeProvider creates a ReportRepo with a custom time provider.
func NewReportRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ReportRepo {
	return &ReportRepo{DB: db, timeProvider: tp}
}

// Create inserts a report with status Unset.
func (r *ReportRepo) Create(ctx context.Context, req *model.CreateReportRequest) (*model.Report, error) {
	if req == nil {
		return nil, errors.New("create report request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	incident, _ := model.ParseDate(req.IncidentDate)
	now := r.timeProvider.Now().UTC()
	out, err := queryOne[model.Report](ctx, r.DB, `
		INSERT INTO reports (
			owner_subject_id, owner_email, type, description, location, incident_date, evidence_urls,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $8)
		RETURNING `+reportColumns,
		req.OwnerSubjectID, req.OwnerEmail, req.Type, req.Description, req.Location, incident,
		req.EvidenceURLs, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return out, nil
}

// GetByID returns a report or ErrReportNotFound. Malformed ids are not found.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	return r.one(ctx, "failed to get report", `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
}

// List returns reports newest first, scoped and filtered by opts.
func (r *ReportRepo) List(ctx context.Context, opts model.ReportListOptions) ([]*model.Report, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset)
	qo := []database.ListQueryOption{
		database.WithColumns(reportColumnList...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.OwnerSubjectID != nil {
		qo = append(qo, database.WithCondition(database.WhereCond("owner_subject_id", database.Equal, *opts.OwnerSubjectID)))
	}
	if opts.AssignedLawyerID != nil {
		qo = append(qo, database.WithCondition(database.WhereCond("assigned_lawyer_id", database.Equal, *opts.AssignedLawyerID)))
	}
	if opts.Type != nil && *opts.Type != "" {
		qo = append(qo, database.WithCondition(database.WhereCond("type", database.Equal, *opts.Type)))
	}
	if opts.Date != nil {
		qo = append(qo, database.WithCondition(database.WhereCond("incident_date", database.Equal, *opts.Date)))
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(*opts.Q)) + "%"
		qo = append(qo, database.WithCondition(
			database.WhereRawCond("(description ILIKE $1 OR location ILIKE $1)", pattern)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("reports", qo...))
	out, err := queryAll[model.Report](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return out, nil
}

// Update edits the user-supplied fields.
func (r *ReportRepo) Update(ctx context.Context, id string, req model.UpdateReportRequest) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if req.Type != nil {
		add("type", strings.TrimSpace(*req.Type))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Location != nil {
		add("location", strings.TrimSpace(*req.Location))
	}
	add("updated_at", r.timeProvider.Now().UTC())
	args = append(args, id)
	query := "UPDATE reports SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + reportColumns
	return r.one(ctx, "failed to update report", query, args...)
}

// Delete removes a report; comments cascade.
func (r *ReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	n, err := execAffected(ctx, r.DB, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return n > 0, nil
}

// Assign overwrites the assigned lawyer.
func (r *ReportRepo) Assign(ctx context.Context, id string, a model.Assignment) (*model.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	return r.one(ctx, "failed to assign report", `
		UPDATE reports SET assigned_lawyer_id = $1, assigned_lawyer_email = $2, updated_at = $3
		WHERE id = $4 RETURNING `+reportColumns,
		a.LawyerID, a.LawyerEmail, r.timeProvider.Now().UTC(), id)
}

// SetStatus updates the case status.
func (r *ReportRepo) SetStatus(ctx context.Context, id string, status cases.Status) (*model.Report, error) {
	if !status.Valid() {
		return nil, errors.New("invalid status")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	return r.one(ctx, "failed to set report status", `
		UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+reportColumns,
		string(status), r.timeProvider.Now().UTC(), id)
}

// SetNotes replaces the lawyer notes.
func (r *ReportRepo) SetNotes(ctx context.Context, id, notes string) (*model.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	return r.one(ctx, "failed to set report notes", `
		UPDATE reports SET notes = $1, updated_at = $2 WHERE id = $3 RETURNING `+reportColumns,
		notes, r.timeProvider.Now().UTC(), id)
}

// Count returns the number of reports.
func (r *ReportRepo) Count(ctx context.Context) (int, error) {
	n, err := queryCount(ctx, r.DB, `SELECT COUNT(*)::int FROM reports`)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// CountBy groups reports by a whitelisted field.
func (r *ReportRepo) CountBy(ctx context.Context, field string) ([]model.CountBucket, error) {
	expr, ok := reportGroupExprs[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGroupField, field)
	}
	rows, err := queryAll[model.CountBucket](ctx, r.DB,
		`SELECT `+expr+` AS key, COUNT(*)::int AS count FROM reports GROUP BY 1 ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by %s: %w", field, err)
	}
	return derefBuckets(rows), nil
}

func (r *ReportRepo) one(ctx context.Context, op, query string, args ...any) (*model.Report, error) {
	out, err := queryOne[model.Report](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
