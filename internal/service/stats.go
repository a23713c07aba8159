package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimetracker/crimetracker-api/internal/core"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
)

const (
	statsCacheKey   = "admin:stats"
	defaultStatsTTL = 30 * time.Second
)

// StatsServiceOptions groups dependencies for StatsService.
type StatsServiceOptions struct {
	Reports  core.ReportRepository
	Witness  core.WitnessReportRepository
	Profiles core.ProfileRepository
	Cache    core.CacheRepository // Optional
	TTL      time.Duration
	Logger   *slog.Logger
}

// StatsService computes the admin dashboard aggregates.
type StatsService struct {
	reports  core.ReportRepository
	witness  core.WitnessReportRepository
	profiles core.ProfileRepository
	cache    core.CacheRepository
	ttl      time.Duration
	logger   *slog.Logger
}

// NewStatsService constructs a new StatsService.
func NewStatsService(opts StatsServiceOptions) *StatsService {
	if opts.Reports == nil || opts.Witness == nil || opts.Profiles == nil {
		panic("report, witness and profile repositories are required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		reports:  opts.Reports,
		witness:  opts.Witness,
		profiles: opts.Profiles,
		cache:    opts.Cache,
		ttl:      ttl,
		logger:   logger.With("component", "stats_service"),
	}
}

// AdminStats returns counts by type, date, status and role plus totals.
// Results are cached briefly; cache failures fall through to the database.
func (s *StatsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	var out model.AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalReports, err = s.reports.Count(gctx)
		return wrapStat("count reports", err)
	})
	g.Go(func() (err error) {
		out.TotalWitnessReports, err = s.witness.Count(gctx)
		return wrapStat("count witness reports", err)
	})
	g.Go(func() (err error) {
		out.ReportsByType, err = s.reports.CountBy(gctx, "type")
		return wrapStat("count by type", err)
	})
	g.Go(func() (err error) {
		out.ReportsByDate, err = s.reports.CountBy(gctx, "incident_date")
		return wrapStat("count by date", err)
	})
	g.Go(func() (err error) {
		out.ReportsByStatus, err = s.reports.CountBy(gctx, "status")
		return wrapStat("count by status", err)
	})
	g.Go(func() (err error) {
		out.UsersByRole, err = s.profiles.CountByRole(gctx)
		return wrapStat("count users by role", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, &out)
	return &out, nil
}

func wrapStat(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *StatsService) fromCache(ctx context.Context) *model.AdminStats {
	if s.cache == nil {
		return nil
	}
	b, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "stats cache read failed", "error", err)
		return nil
	}
	if b == nil {
		return nil
	}
	var out model.AdminStats
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.WarnContext(ctx, "stats cache entry invalid", "error", err)
		return nil
	}
	return &out
}

func (s *StatsService) toCache(ctx context.Context, stats *model.AdminStats) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, b, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "stats cache write failed", "error", err)
	}
}
