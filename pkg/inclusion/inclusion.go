// Package inclusion decides which merged titles belong in the published
// catalog and computes the statistics the decision is calibrated from.
package inclusion

import (
	"math"
	"sort"
	"time"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
)

// Config holds the inclusion thresholds.
type Config struct {
	// MetascoreMin is the quality floor for titles that have a critic score.
	MetascoreMin float64 `json:"metascore_min" yaml:"metascore_min"`
	// PopularityMin gates unscored titles. Nil disables the gate.
	PopularityMin *float64 `json:"popularity_min" yaml:"popularity_min"`
	// RecentMonths is the recency window in 30-day months. Zero disables it.
	RecentMonths int `json:"recent_months" yaml:"recent_months"`
	// RequireReleaseDate rejects unscored titles with no release date.
	RequireReleaseDate bool `json:"require_release_date" yaml:"require_release_date"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MetascoreMin:       constants.DefaultMetascoreMin,
		RecentMonths:       constants.DefaultRecentMonths,
		RequireReleaseDate: constants.DefaultRequireReleaseDate,
	}
}

// Summary returns the thresholds as recorded in a document.
func (c Config) Summary() catalog.FilterSummary {
	s := catalog.FilterSummary{
		MetascoreMin:       c.MetascoreMin,
		RecentMonths:       c.RecentMonths,
		RequireReleaseDate: c.RequireReleaseDate,
	}
	if c.PopularityMin != nil {
		s.PopularityMin = catalog.Ptr(*c.PopularityMin)
	}
	return s
}

// Filter applies a Config against a fixed clock.
type Filter struct {
	cfg Config
	now time.Time
}

// NewFilter creates a filter. A nil now uses time.Now.
func NewFilter(cfg Config, now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{cfg: cfg, now: now()}
}

// Config returns the filter's thresholds.
func (f *Filter) Config() Config { return f.cfg }

// Keep reports whether e belongs in the catalog.
//
// A critic score decides on its own. Otherwise a title needs a release
// date (unless RequireReleaseDate is off), must fall inside the recency
// window, and must pass the popularity gate. Titles released in the future
// count as recent.
func (f *Filter) Keep(e *catalog.Entity) bool {
	if e.Metascore != nil {
		return *e.Metascore >= f.cfg.MetascoreMin
	}
	if e.ReleaseTimestamp == nil {
		return !f.cfg.RequireReleaseDate && f.popular(e)
	}
	return f.recent(*e.ReleaseTimestamp) && f.popular(e)
}

func (f *Filter) recent(ms int64) bool {
	if f.cfg.RecentMonths <= 0 {
		return true
	}
	window := time.Duration(f.cfg.RecentMonths) * constants.MonthDuration
	return f.now.UnixMilli()-ms <= window.Milliseconds()
}

func (f *Filter) popular(e *catalog.Entity) bool {
	if f.cfg.PopularityMin == nil {
		return true
	}
	return e.Popularity != nil && *e.Popularity >= *f.cfg.PopularityMin
}

// Apply returns the kept entities, in order.
func (f *Filter) Apply(items []catalog.CanonicalEntity) []catalog.CanonicalEntity {
	out := make([]catalog.CanonicalEntity, 0, len(items))
	for i := range items {
		if f.Keep(&items[i].Entity) {
			out = append(out, items[i])
		}
	}
	return out
}

// Calibrate fills an unset or non-positive PopularityMin from the batch
// average popularity, falling back to the 75th percentile and then to 0.
// A zero floor still requires unscored titles to carry a popularity.
func Calibrate(cfg Config, stats catalog.Stats) Config {
	if cfg.PopularityMin != nil && *cfg.PopularityMin > 0 {
		return cfg
	}
	switch {
	case stats.AvgPopularity != nil:
		cfg.PopularityMin = catalog.Ptr(*stats.AvgPopularity)
	case stats.P75Popularity != nil:
		cfg.PopularityMin = catalog.Ptr(*stats.P75Popularity)
	default:
		cfg.PopularityMin = catalog.Ptr(0.0)
	}
	return cfg
}

// ComputeStats summarizes scores and popularity over all merged titles.
// Kept only contributes TotalKept.
func ComputeStats(all, kept []catalog.CanonicalEntity) catalog.Stats {
	var scores, pops []float64
	for i := range all {
		if v := all[i].Metascore; v != nil && isFinite(*v) {
			scores = append(scores, *v)
		}
		if v := all[i].Popularity; v != nil && isFinite(*v) {
			pops = append(pops, *v)
		}
	}
	sort.Float64s(pops)

	s := catalog.Stats{
		TotalRaw:      len(all),
		TotalKept:     len(kept),
		AvgMetascore:  average(scores),
		AvgPopularity: average(pops),
	}
	if n := len(pops); n > 0 {
		mid := n / 2
		if n%2 == 0 {
			s.PopularityMedian = catalog.Ptr(round2((pops[mid-1] + pops[mid]) / 2))
		} else {
			s.PopularityMedian = catalog.Ptr(pops[mid])
		}
		s.P75Popularity = catalog.Ptr(pops[min(n-1, int(math.Floor(float64(n)*0.75)))])
		s.PopularityMax = catalog.Ptr(pops[n-1])
	}
	return s
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return catalog.Ptr(round2(sum / float64(len(values))))
}

// round2 rounds half away from zero at two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
