// Package popularity resolves one popularity score per entity.
//
// Sources report popularity in different ways, and some stamp every record
// with the same meaningless default. Resolve first suppresses such
// batch-wide sentinels, then fills gaps from a prioritized chain of rating
// signals. Higher is always better; ranks are negated on the way in.
package popularity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
)

// Signal names one fallback source of popularity.
type Signal string

// Fallback signals.
const (
	SignalTotalRatingCount Signal = "total_rating_count"
	SignalRatingCount      Signal = "rating_count" // rating count, else aggregated rating count
	SignalHypes            Signal = "hypes"
	SignalReviewCount      Signal = "userscore_reviews"
)

// DefaultChain is the fallback order used when none is configured.
var DefaultChain = []Signal{
	SignalTotalRatingCount,
	SignalRatingCount,
	SignalHypes,
	SignalReviewCount,
}

// ParseSignal accepts a signal name.
func ParseSignal(s string) (Signal, error) {
	switch sig := Signal(strings.ToLower(strings.TrimSpace(s))); sig {
	case SignalTotalRatingCount, SignalRatingCount, SignalHypes, SignalReviewCount:
		return sig, nil
	}
	return "", fmt.Errorf("unknown popularity signal %q", s)
}

func (s Signal) value(e *catalog.Entity) *float64 {
	switch s {
	case SignalTotalRatingCount:
		return e.TotalRatingCount
	case SignalRatingCount:
		if e.RatingCount != nil {
			return e.RatingCount
		}
		return e.AggregatedRatingCount
	case SignalHypes:
		return e.Hypes
	case SignalReviewCount:
		return e.UserscoreReviews
	}
	return nil
}

// Config controls sentinel detection and the fallback chain.
type Config struct {
	// Sentinels are placeholder values a source may stamp on every record.
	Sentinels []float64
	// DisableSentinels turns sentinel detection off entirely.
	DisableSentinels bool
	// Chain is the fallback order; nil means DefaultChain.
	Chain []Signal
}

// DefaultConfig returns the sentinels {300, 0} and DefaultChain.
func DefaultConfig() Config {
	return Config{
		Sentinels: []float64{constants.SentinelUnranked, constants.SentinelZero},
		Chain:     DefaultChain,
	}
}

// Report describes what a Resolve call changed.
type Report struct {
	// Sentinel is the suppressed placeholder, if one was detected.
	Sentinel   *float64
	Suppressed int
	Filled     map[Signal]int
	// Unresolved counts entities left without popularity.
	Unresolved int
}

// Resolver applies a Config to batches of entities.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.Chain == nil {
		cfg.Chain = DefaultChain
	}
	return &Resolver{cfg: cfg}
}

// Resolve updates popularity in place across the whole batch.
func (r *Resolver) Resolve(batch []*catalog.Entity) Report {
	report := Report{Filled: make(map[Signal]int)}

	if sentinel, ok := r.detectSentinel(batch); ok {
		report.Sentinel = catalog.Ptr(sentinel)
		for _, e := range batch {
			if e.Popularity != nil && *e.Popularity == sentinel {
				e.Popularity = nil
				report.Suppressed++
			}
		}
	}

	for _, e := range batch {
		if e.Popularity != nil {
			continue
		}
		for _, sig := range r.cfg.Chain {
			if v := sig.value(e); v != nil {
				e.Popularity = catalog.Ptr(*v)
				report.Filled[sig]++
				break
			}
		}
		if e.Popularity == nil {
			report.Unresolved++
		}
	}
	return report
}

// detectSentinel reports the placeholder when the batch's non-null
// popularity values collapse to exactly one distinct configured sentinel.
func (r *Resolver) detectSentinel(batch []*catalog.Entity) (float64, bool) {
	if r.cfg.DisableSentinels || len(r.cfg.Sentinels) == 0 {
		return 0, false
	}
	var only *float64
	for _, e := range batch {
		if e.Popularity == nil {
			continue
		}
		if only == nil {
			only = e.Popularity
			continue
		}
		if *e.Popularity != *only {
			return 0, false
		}
	}
	if only == nil {
		return 0, false
	}
	for _, s := range r.cfg.Sentinels {
		if *only == s {
			return s, true
		}
	}
	return 0, false
}

// Resolve runs a default Resolver over batch.
func Resolve(batch []*catalog.Entity) Report {
	return NewResolver(DefaultConfig()).Resolve(batch)
}

// FromRank converts a rank (lower is better) into a score (higher is better).
func FromRank(rank float64) float64 {
	return -rank
}

// Label renders popularity for display: "--" when unknown, "#N" when the
// score came from a rank.
func Label(e *catalog.Entity) string {
	if e.Popularity == nil {
		return "--"
	}
	if e.PopularityRank != nil && *e.Popularity == FromRank(*e.PopularityRank) {
		return "#" + strconv.FormatFloat(*e.PopularityRank, 'f', -1, 64)
	}
	return strconv.FormatFloat(*e.Popularity, 'f', -1, 64)
}
