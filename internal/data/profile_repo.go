package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/crimetracker/crimetracker-api/internal/data/database"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

const profileColumns = `subject_id, email, display_name, role, photo_url, theme, created_at, updated_at`

// ProfileRepo provides database operations for profiles.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// Create inserts a profile. An existing profile for the subject yields ErrProfileExists.
func (r *ProfileRepo) Create(ctx context.Context, req *model.CreateProfileRequest) (*model.Profile, error) {
	if req == nil {
		return nil, errors.New("create profile request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := r.timeProvider.Now().UTC()
	p, err := queryOne[model.Profile](ctx, r.DB, `
		INSERT INTO profiles (subject_id, email, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (subject_id) DO NOTHING
		RETURNING `+profileColumns,
		req.SubjectID, req.Email, req.DisplayName, string(req.Role), now,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// GetBySubjectID returns the profile or ErrProfileNotFound.
func (r *ProfileRepo) GetBySubjectID(ctx context.Context, subjectID string) (*model.Profile, error) {
	p, err := queryOne[model.Profile](ctx, r.DB,
		`SELECT `+profileColumns+` FROM profiles WHERE subject_id = $1`, subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Update applies self-service settings.
func (r *ProfileRepo) Update(
	ctx context.Context,
	subjectID string,
	req model.UpdateProfileRequest,
) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if req.DisplayName != nil {
		add("display_name", *req.DisplayName)
	}
	if req.PhotoURL != nil {
		add("photo_url", req.PhotoURL)
	}
	if req.Theme != nil {
		add("theme", string(*req.Theme))
	}
	add("updated_at", r.timeProvider.Now().UTC())
	args = append(args, subjectID)

	query := "UPDATE profiles SET " + strings.Join(sets, ", ") +
		" WHERE subject_id = $" + strconv.Itoa(len(args)) + " RETURNING " + profileColumns
	p, err := queryOne[model.Profile](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// SetRole overwrites the role of an existing profile.
func (r *ProfileRepo) SetRole(ctx context.Context, subjectID string, role domainauth.Role) (*model.Profile, error) {
	if !role.Valid() {
		return nil, errors.New("invalid role")
	}
	p, err := queryOne[model.Profile](ctx, r.DB, `
		UPDATE profiles SET role = $1, updated_at = $2 WHERE subject_id = $3
		RETURNING `+profileColumns,
		string(role), r.timeProvider.Now().UTC(), subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	return p, nil
}

// List returns profiles ordered by email, optionally filtered by role.
func (r *ProfileRepo) List(ctx context.Context, opts model.ProfileListOptions) ([]*model.Profile, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset)
	qo := []database.ListQueryOption{
		database.WithColumns(strings.Split(strings.ReplaceAll(profileColumns, " ", ""), ",")...),
		database.WithOrderBy("email", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Role != nil {
		qo = append(qo, database.WithCondition(database.WhereCond("role", database.Equal, string(*opts.Role))))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("profiles", qo...))
	out, err := queryAll[model.Profile](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return out, nil
}

// Delete removes a profile. It reports whether a row was deleted.
func (r *ProfileRepo) Delete(ctx context.Context, subjectID string) (bool, error) {
	n, err := execAffected(ctx, r.DB, `DELETE FROM profiles WHERE subject_id = $1`, subjectID)
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return n > 0, nil
}

// CountByRole groups profiles by stored role text; unset roles group under "".
func (r *ProfileRepo) CountByRole(ctx context.Context) ([]model.CountBucket, error) {
	rows, err := queryAll[model.CountBucket](ctx, r.DB,
		`SELECT role AS key, COUNT(*)::int AS count FROM profiles GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to count profiles by role: %w", err)
	}
	return derefBuckets(rows), nil
}

func derefBuckets(rows []*model.CountBucket) []model.CountBucket {
	out := make([]model.CountBucket, len(rows))
	for i, b := range rows {
		out[i] = *b
	}
	return out
}
