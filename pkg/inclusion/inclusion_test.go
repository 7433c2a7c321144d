package inclusion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/inclusion"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func daysAgo(d int) *int64 {
	ms := now.Add(-time.Duration(d) * 24 * time.Hour).UnixMilli()
	return &ms
}

func TestKeep(t *testing.T) {
	popMin := catalog.Ptr(50.0)

	tests := []struct {
		name   string
		cfg    inclusion.Config
		entity catalog.Entity
		want   bool
	}{
		{
			name:   "metascore above floor ignores everything else",
			cfg:    inclusion.Config{MetascoreMin: 45, PopularityMin: popMin, RecentMonths: 3, RequireReleaseDate: true},
			entity: catalog.Entity{Metascore: catalog.Ptr(80.0)},
			want:   true,
		},
		{
			name:   "metascore at floor",
			cfg:    inclusion.Config{MetascoreMin: 45},
			entity: catalog.Entity{Metascore: catalog.Ptr(45.0)},
			want:   true,
		},
		{
			name:   "metascore below floor",
			cfg:    inclusion.Config{MetascoreMin: 45},
			entity: catalog.Entity{Metascore: catalog.Ptr(44.9), Popularity: catalog.Ptr(1000.0), ReleaseTimestamp: daysAgo(1)},
			want:   false,
		},
		{
			name:   "no release date when required",
			cfg:    inclusion.Config{MetascoreMin: 45, RequireReleaseDate: true},
			entity: catalog.Entity{Popularity: catalog.Ptr(1000.0)},
			want:   false,
		},
		{
			name:   "no release date allowed and popular",
			cfg:    inclusion.Config{MetascoreMin: 45, PopularityMin: popMin},
			entity: catalog.Entity{Popularity: catalog.Ptr(50.0)},
			want:   true,
		},
		{
			name:   "no release date allowed but unpopular",
			cfg:    inclusion.Config{MetascoreMin: 45, PopularityMin: popMin},
			entity: catalog.Entity{Popularity: catalog.Ptr(10.0)},
			want:   false,
		},
		{
			name:   "popularity gate with null popularity",
			cfg:    inclusion.Config{MetascoreMin: 45, PopularityMin: popMin},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(5)},
			want:   false,
		},
		{
			name:   "recent release without gate",
			cfg:    inclusion.Config{MetascoreMin: 45, RecentMonths: 3, RequireReleaseDate: true},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(89)},
			want:   true,
		},
		{
			name:   "release on window edge",
			cfg:    inclusion.Config{MetascoreMin: 45, RecentMonths: 3},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(90)},
			want:   true,
		},
		{
			name:   "old release",
			cfg:    inclusion.Config{MetascoreMin: 45, RecentMonths: 3},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(91)},
			want:   false,
		},
		{
			name:   "future release is recent",
			cfg:    inclusion.Config{MetascoreMin: 45, RecentMonths: 3},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(-200)},
			want:   true,
		},
		{
			name:   "window disabled",
			cfg:    inclusion.Config{MetascoreMin: 45},
			entity: catalog.Entity{ReleaseTimestamp: daysAgo(3000)},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := inclusion.NewFilter(tt.cfg, clock)
			assert.Equal(t, tt.want, f.Keep(&tt.entity))
		})
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	items := []catalog.CanonicalEntity{
		{Entity: catalog.Entity{MatchKey: "a", Metascore: catalog.Ptr(90.0)}},
		{Entity: catalog.Entity{MatchKey: "b", Metascore: catalog.Ptr(10.0)}},
		{Entity: catalog.Entity{MatchKey: "c", Metascore: catalog.Ptr(70.0)}},
	}
	kept := inclusion.NewFilter(inclusion.DefaultConfig(), clock).Apply(items)
	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].MatchKey)
	assert.Equal(t, "c", kept[1].MatchKey)
}

func TestComputeStats(t *testing.T) {
	all := []catalog.CanonicalEntity{
		{Entity: catalog.Entity{Metascore: catalog.Ptr(80.0), Popularity: catalog.Ptr(10.0)}},
		{Entity: catalog.Entity{Metascore: catalog.Ptr(71.0), Popularity: catalog.Ptr(20.0)}},
		{Entity: catalog.Entity{Popularity: catalog.Ptr(35.0)}},
		{Entity: catalog.Entity{Popularity: catalog.Ptr(3.333)}},
		{Entity: catalog.Entity{}},
	}
	s := inclusion.ComputeStats(all, all[:2])

	assert.Equal(t, 5, s.TotalRaw)
	assert.Equal(t, 2, s.TotalKept)
	assert.Equal(t, 75.5, *s.AvgMetascore)
	assert.Equal(t, 17.08, *s.AvgPopularity)
	assert.Equal(t, 15.0, *s.PopularityMedian)
	assert.Equal(t, 35.0, *s.P75Popularity)
	assert.Equal(t, 35.0, *s.PopularityMax)
}

func TestComputeStatsOdd(t *testing.T) {
	all := []catalog.CanonicalEntity{
		{Entity: catalog.Entity{Popularity: catalog.Ptr(3.0)}},
		{Entity: catalog.Entity{Popularity: catalog.Ptr(1.0)}},
		{Entity: catalog.Entity{Popularity: catalog.Ptr(2.0)}},
	}
	s := inclusion.ComputeStats(all, nil)
	assert.Equal(t, 2.0, *s.PopularityMedian)
	assert.Equal(t, 3.0, *s.P75Popularity)
	assert.Nil(t, s.AvgMetascore)
}

func TestComputeStatsEmpty(t *testing.T) {
	s := inclusion.ComputeStats(nil, nil)
	assert.Zero(t, s.TotalRaw)
	assert.Nil(t, s.AvgPopularity)
	assert.Nil(t, s.PopularityMedian)
	assert.Nil(t, s.P75Popularity)
	assert.Nil(t, s.PopularityMax)
}

func TestCalibrate(t *testing.T) {
	stats := catalog.Stats{AvgPopularity: catalog.Ptr(12.5), P75Popularity: catalog.Ptr(30.0)}

	explicit := inclusion.Calibrate(inclusion.Config{PopularityMin: catalog.Ptr(7.0)}, stats)
	assert.Equal(t, 7.0, *explicit.PopularityMin)

	unset := inclusion.Calibrate(inclusion.Config{}, stats)
	assert.Equal(t, 12.5, *unset.PopularityMin)

	zero := inclusion.Calibrate(inclusion.Config{PopularityMin: catalog.Ptr(0.0)}, stats)
	assert.Equal(t, 12.5, *zero.PopularityMin)

	p75 := inclusion.Calibrate(inclusion.Config{}, catalog.Stats{P75Popularity: catalog.Ptr(30.0)})
	assert.Equal(t, 30.0, *p75.PopularityMin)

	none := inclusion.Calibrate(inclusion.Config{PopularityMin: catalog.Ptr(-1.0)}, catalog.Stats{})
	require.NotNil(t, none.PopularityMin)
	assert.Equal(t, 0.0, *none.PopularityMin)
}

func TestCalibrateWithoutPopularityRejectsUnscored(t *testing.T) {
	cfg := inclusion.Calibrate(inclusion.DefaultConfig(), catalog.Stats{})
	f := inclusion.NewFilter(cfg, clock)

	assert.False(t, f.Keep(&catalog.Entity{Title: "Quiet", ReleaseTimestamp: daysAgo(30)}))
	assert.True(t, f.Keep(&catalog.Entity{Title: "Known", ReleaseTimestamp: daysAgo(30), Popularity: catalog.Ptr(0.0)}))
	assert.True(t, f.Keep(&catalog.Entity{Title: "Scored", Metascore: catalog.Ptr(80.0)}))

	require.NotNil(t, cfg.Summary().PopularityMin)
	assert.Equal(t, 0.0, *cfg.Summary().PopularityMin)
}

func TestSummary(t *testing.T) {
	cfg := inclusion.DefaultConfig()
	cfg.PopularityMin = catalog.Ptr(3.0)
	s := cfg.Summary()
	assert.Equal(t, 45.0, s.MetascoreMin)
	assert.Equal(t, 3, s.RecentMonths)
	assert.True(t, s.RequireReleaseDate)
	assert.Equal(t, 3.0, *s.PopularityMin)
}
