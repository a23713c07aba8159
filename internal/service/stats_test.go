package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/mocks"
)

type statsFixture struct {
	reports  *mocks.MockReportRepository
	witness  *mocks.MockWitnessReportRepository
	profiles *mocks.MockProfileRepository
	cache    *mocks.MockCacheRepository
	svc      *StatsService
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &statsFixture{
		reports:  mocks.NewMockReportRepository(ctrl),
		witness:  mocks.NewMockWitnessReportRepository(ctrl),
		profiles: mocks.NewMockProfileRepository(ctrl),
		cache:    mocks.NewMockCacheRepository(ctrl),
	}
	f.svc = NewStatsService(StatsServiceOptions{
		Reports:  f.reports,
		Witness:  f.witness,
		Profiles: f.profiles,
		Cache:    f.cache,
	})
	return f
}

func (f *statsFixture) expectQueries() {
	f.reports.EXPECT().Count(gomock.Any()).Return(3, nil)
	f.witness.EXPECT().Count(gomock.Any()).Return(1, nil)
	f.reports.EXPECT().CountBy(gomock.Any(), "type").Return([]model.CountBucket{{Key: "Theft", Count: 2}, {Key: "Fraud", Count: 1}}, nil)
	f.reports.EXPECT().CountBy(gomock.Any(), "incident_date").Return([]model.CountBucket{{Key: "2024-03-01", Count: 3}}, nil)
	f.reports.EXPECT().CountBy(gomock.Any(), "status").Return([]model.CountBucket{{Key: "", Count: 3}}, nil)
	f.profiles.EXPECT().CountByRole(gomock.Any()).Return([]model.CountBucket{{Key: "user", Count: 4}}, nil)
}

func TestStatsService_AdminStats_ComputesAndCaches(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()

	f.cache.EXPECT().Get(ctx, statsCacheKey).Return(nil, nil)
	f.expectQueries()
	f.cache.EXPECT().Set(ctx, statsCacheKey, gomock.Any(), defaultStatsTTL).Return(nil)

	stats, err := f.svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReports)
	assert.Equal(t, 1, stats.TotalWitnessReports)
	assert.Len(t, stats.ReportsByType, 2)
	assert.Equal(t, "2024-03-01", stats.ReportsByDate[0].Key)
	assert.Equal(t, 4, stats.UsersByRole[0].Count)
}

func TestStatsService_AdminStats_CacheHit(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()

	b, err := json.Marshal(model.AdminStats{TotalReports: 42})
	require.NoError(t, err)
	f.cache.EXPECT().Get(ctx, statsCacheKey).Return(b, nil)

	stats, err := f.svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalReports)
}

func TestStatsService_AdminStats_CacheFailureFallsThrough(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()

	f.cache.EXPECT().Get(ctx, statsCacheKey).Return(nil, errors.New("redis down"))
	f.expectQueries()
	f.cache.EXPECT().Set(ctx, statsCacheKey, gomock.Any(), defaultStatsTTL).Return(errors.New("redis down"))

	stats, err := f.svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReports)
}

func TestStatsService_AdminStats_QueryError(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()

	f.cache.EXPECT().Get(ctx, statsCacheKey).Return(nil, nil)
	f.reports.EXPECT().Count(gomock.Any()).Return(0, errors.New("db down"))
	f.witness.EXPECT().Count(gomock.Any()).Return(1, nil).AnyTimes()
	f.reports.EXPECT().CountBy(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	f.profiles.EXPECT().CountByRole(gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := f.svc.AdminStats(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count reports")
}
