// Package devseed populates a development database with profiles for every
// role and a handful of sample cases so the dashboards have something to show.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/data"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/cases"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

// Demo subjects seeded next to the configured dev identity.
const (
	DemoLawyerSubject = "dev-lawyer"
	DemoUserSubject   = "dev-reporter"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Profiles core.ProfileRepository
	Reports  core.ReportRepository
}

// Identity is the dev login that gets promoted to admin.
type Identity struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// Run seeds profiles and, when no reports exist yet, sample cases.
// Individual failures are logged and counted; Run reports them in aggregate.
func Run(ctx context.Context, svcs Services, dev Identity, logger *slog.Logger) error {
	if svcs.Profiles == nil || svcs.Reports == nil {
		return errors.New("devseed requires profile and report repositories")
	}
	if logger == nil {
		logger = slog.Default()
	}

	failures := seedProfiles(ctx, svcs.Profiles, defaultProfiles(dev), logger)

	n, err := svcs.Reports.Count(ctx)
	if err != nil {
		return fmt.Errorf("count reports: %w", err)
	}
	if n == 0 {
		failures += seedReports(ctx, svcs.Reports, logger)
	} else {
		logger.InfoContext(ctx, "reports already present, skipping sample cases", "count", n)
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func defaultProfiles(dev Identity) []*model.CreateProfileRequest {
	out := []*model.CreateProfileRequest{
		{SubjectID: DemoLawyerSubject, Email: "lawyer@example.com", DisplayName: "Dana Counsel", Role: domainauth.RoleLawyer},
		{SubjectID: DemoUserSubject, Email: "reporter@example.com", DisplayName: "Riley Reporter", Role: domainauth.RoleUser},
	}
	if dev.SubjectID != "" {
		out = append([]*model.CreateProfileRequest{{
			SubjectID:   dev.SubjectID,
			Email:       dev.Email,
			DisplayName: dev.DisplayName,
			Role:        domainauth.RoleAdmin,
		}}, out...)
	}
	return out
}

func seedProfiles(
	ctx context.Context,
	repo core.ProfileRepository,
	reqs []*model.CreateProfileRequest,
	logger *slog.Logger,
) int {
	failures := 0
	for _, req := range reqs {
		created, err := createProfile(ctx, repo, req)
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed profile", "subject", req.SubjectID, "error", err)
			failures++
			continue
		}
		msg := "profile already exists"
		if created {
			msg = "created profile"
		}
		logger.InfoContext(ctx, msg, "subject", req.SubjectID, "role", req.Role)
	}
	return failures
}

func createProfile(ctx context.Context, repo core.ProfileRepository, req *model.CreateProfileRequest) (bool, error) {
	if _, err := repo.Create(ctx, req); err != nil {
		if errors.Is(err, data.ErrProfileExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type reportSeed struct {
	req    model.CreateReportRequest
	assign bool
	status cases.Status
}

func defaultReports() []reportSeed {
	return []reportSeed{
		{
			req: model.CreateReportRequest{
				Type:         "Theft",
				Description:  "Bicycle taken from the rack outside the library.",
				Location:     "Main St Library",
				IncidentDate: "2024-02-11",
			},
		},
		{
			req: model.CreateReportRequest{
				Type:         "Vandalism",
				Description:  "Graffiti on the community center wall.",
				Location:     "Oak Park Community Center",
				IncidentDate: "2024-03-02",
			},
			assign: true,
			status: cases.StatusInProgress,
		},
		{
			req: model.CreateReportRequest{
				Type:         "Fraud",
				Description:  "Card skimmer found on a gas station pump.",
				Location:     "Route 9 Fuel",
				IncidentDate: "2024-01-20",
			},
			assign: true,
			status: cases.StatusResolved,
		},
	}
}

func seedReports(ctx context.Context, repo core.ReportRepository, logger *slog.Logger) int {
	failures := 0
	for _, seed := range defaultReports() {
		if err := createReport(ctx, repo, seed); err != nil {
			logger.ErrorContext(ctx, "failed to seed report", "type", seed.req.Type, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "created sample report", "type", seed.req.Type, "location", seed.req.Location)
	}
	return failures
}

func createReport(ctx context.Context, repo core.ReportRepository, seed reportSeed) error {
	req := seed.req
	req.OwnerSubjectID = DemoUserSubject
	req.OwnerEmail = "reporter@example.com"
	if err := req.Validate(); err != nil {
		return err
	}
	report, err := repo.Create(ctx, &req)
	if err != nil {
		return err
	}
	if !seed.assign {
		return nil
	}
	if _, err := repo.Assign(ctx, report.ID, model.Assignment{
		LawyerID:    DemoLawyerSubject,
		LawyerEmail: "lawyer@example.com",
	}); err != nil {
		return fmt.Errorf("assign: %w", err)
	}
	if seed.status != cases.StatusUnset {
		if _, err := repo.SetStatus(ctx, report.ID, seed.status); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
	}
	return nil
}
