package playmap

import (
	"time"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/inclusion"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/provenance"
	"github.com/agentstation/playmap/pkg/reconcile"
)

// options holds the configuration for a Client.
type options struct {
	filter            inclusion.Config
	popularity        popularity.Config
	policies          []reconcile.FieldPolicy
	tracker           provenance.Tracker
	now               func() time.Time
	goodDealThreshold float64
	initialDocument   *catalog.Document

	// auto rebuild
	autoRebuildInterval time.Duration
	autoRebuildFunc     InputsFunc
}

func defaults() *options {
	return &options{
		filter:            inclusion.DefaultConfig(),
		popularity:        popularity.DefaultConfig(),
		now:               time.Now,
		goodDealThreshold: constants.GoodDealThreshold,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithFilter sets the inclusion thresholds. An unset PopularityMin is
// calibrated from each pass's statistics.
func WithFilter(cfg inclusion.Config) Option {
	return func(o *options) error {
		if cfg.RecentMonths < 0 {
			return errors.NewValidationError("recent_months", cfg.RecentMonths, "must not be negative")
		}
		o.filter = cfg
		return nil
	}
}

// WithPopularity sets sentinel detection and the fallback chain.
func WithPopularity(cfg popularity.Config) Option {
	return func(o *options) error {
		o.popularity = cfg
		return nil
	}
}

// WithClock replaces time.Now for recency checks and document timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "clock cannot be nil")
		}
		o.now = now
		return nil
	}
}

// WithMergePolicies replaces the default field policy table.
func WithMergePolicies(policies []reconcile.FieldPolicy) Option {
	return func(o *options) error {
		o.policies = policies
		return nil
	}
}

// WithProvenance records which source supplied each merged field.
func WithProvenance(t provenance.Tracker) Option {
	return func(o *options) error {
		o.tracker = t
		return nil
	}
}

// WithGoodDealThreshold sets the best discount a wished title needs to be
// flagged as a deal.
func WithGoodDealThreshold(percent float64) Option {
	return func(o *options) error {
		if percent < 0 || percent > 100 {
			return errors.NewValidationError("good_deal_threshold", percent, "must be between 0 and 100")
		}
		o.goodDealThreshold = percent
		return nil
	}
}

// WithInitialDocument publishes doc before the first rebuild.
func WithInitialDocument(doc *catalog.Document) Option {
	return func(o *options) error {
		if doc == nil {
			return errors.NewValidationError("document", nil, "initial document cannot be nil")
		}
		if err := doc.CheckVersion(); err != nil {
			return err
		}
		o.initialDocument = doc
		return nil
	}
}

// WithAutoRebuild rebuilds every interval from the inputs fn returns.
func WithAutoRebuild(interval time.Duration, fn InputsFunc) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.NewValidationError("auto_rebuild", nil, "inputs function cannot be nil")
		}
		o.autoRebuildInterval = interval
		o.autoRebuildFunc = fn
		return nil
	}
}
