package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crimetracker/crimetracker-api/internal/data/database"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

var witnessColumnList = []string{
	"id", "owner_subject_id", "report_id", "witness_name", "testimony", "file_url", "created_at", "updated_at",
}

const witnessReturning = ` RETURNING id, owner_subject_id, report_id, witness_name, testimony, file_url, created_at, updated_at`

// WitnessReportRepo provides database operations for witness reports.
type WitnessReportRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewWitnessReportRepo creates a new WitnessReportRepo.
func NewWitnessReportRepo(db *sql.DB) *WitnessReportRepo {
	return &WitnessReportRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a witness report.
func (r *WitnessReportRepo) Create(
	ctx context.Context,
	req *model.CreateWitnessReportRequest,
) (*model.WitnessReport, error) {
	if req == nil {
		return nil, errors.New("create witness report request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ReportID != nil {
		if _, err := uuid.Parse(*req.ReportID); err != nil {
			return nil, ErrReportNotFound
		}
	}
	now := r.timeProvider.Now().UTC()
	out, err := queryOne[model.WitnessReport](ctx, r.DB, `
		INSERT INTO witness_reports (owner_subject_id, report_id, witness_name, testimony, file_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`+witnessReturning,
		req.OwnerSubjectID, req.ReportID, req.WitnessName, req.Testimony, req.FileURL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create witness report: %w", err)
	}
	return out, nil
}

// GetByID returns a witness report or ErrWitnessReportNotFound.
func (r *WitnessReportRepo) GetByID(ctx context.Context, id string) (*model.WitnessReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrWitnessReportNotFound
	}
	out, err := queryOne[model.WitnessReport](ctx, r.DB, `
		SELECT id, owner_subject_id, report_id, witness_name, testimony, file_url, created_at, updated_at
		FROM witness_reports WHERE id = $1`, id)
	return witnessResult(out, err, "failed to get witness report")
}

// List returns witness reports newest first.
func (r *WitnessReportRepo) List(
	ctx context.Context,
	opts model.WitnessReportListOptions,
) ([]*model.WitnessReport, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset)
	qo := []database.ListQueryOption{
		database.WithColumns(witnessColumnList...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.OwnerSubjectID != nil {
		qo = append(qo, database.WithCondition(database.WhereCond("owner_subject_id", database.Equal, *opts.OwnerSubjectID)))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("witness_reports", qo...))
	out, err := queryAll[model.WitnessReport](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list witness reports: %w", err)
	}
	return out, nil
}

// UpdateTestimony replaces the testimony text.
func (r *WitnessReportRepo) UpdateTestimony(
	ctx context.Context,
	id, testimony string,
) (*model.WitnessReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrWitnessReportNotFound
	}
	out, err := queryOne[model.WitnessReport](ctx, r.DB, `
		UPDATE witness_reports SET testimony = $1, updated_at = $2 WHERE id = $3`+witnessReturning,
		testimony, r.timeProvider.Now().UTC(), id)
	return witnessResult(out, err, "failed to update witness report")
}

// Delete removes a witness report.
func (r *WitnessReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	n, err := execAffected(ctx, r.DB, `DELETE FROM witness_reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete witness report: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of witness reports.
func (r *WitnessReportRepo) Count(ctx context.Context) (int, error) {
	n, err := queryCount(ctx, r.DB, `SELECT COUNT(*)::int FROM witness_reports`)
	if err != nil {
		return 0, fmt.Errorf("failed to count witness reports: %w", err)
	}
	return n, nil
}

func witnessResult(out *model.WitnessReport, err error, op string) (*model.WitnessReport, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWitnessReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
