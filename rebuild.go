package playmap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/playmap/pkg/canonicalize"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/inclusion"
	"github.com/agentstation/playmap/pkg/logging"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/pricing"
	"github.com/agentstation/playmap/pkg/reconcile"
	"github.com/agentstation/playmap/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Builder = (*client)(nil)

// Builder runs reconciliation passes.
type Builder interface {
	// Rebuild runs a full pass and publishes the result
	Rebuild(ctx context.Context, in Inputs) (*Result, error)
}

// Store is one storefront export.
type Store struct {
	Name    string
	Records []*catalog.RawRecord
}

// Inputs is the raw material of one pass. Stores are concatenated in
// order, so an earlier store wins first-non-empty fields.
type Inputs struct {
	Stores   []Store
	Critic   canonicalize.Cache
	Metadata canonicalize.Cache
	// Names are written to the document metadata. Nil uses the store names.
	Names []string
}

// InputsFrom arranges loaded batches for a rebuild. Owned and wishlist
// batches are left out; they only feed views.
func InputsFrom(res *sources.Result) Inputs {
	var in Inputs
	for _, b := range res.Batches {
		switch b.Spec.ID {
		case sources.OwnedID, sources.WishlistID:
			continue
		case sources.CriticID:
			in.Critic = b.Cache
		case sources.MetadataID:
			in.Metadata = b.Cache
		default:
			if b.Spec.Kind == sources.KindCache {
				continue
			}
			in.Stores = append(in.Stores, Store{Name: b.Spec.Name(), Records: b.Records})
		}
		if !b.Missing {
			in.Names = append(in.Names, filepath.Base(b.Spec.Path))
		}
	}
	return in
}

// Result describes a completed pass.
type Result struct {
	RunID      string
	Document   *catalog.Document
	Changes    reconcile.Changeset
	Dropped    int // records without a usable title
	Enrich     canonicalize.EnrichReport
	Popularity popularity.Report
	// Filter is the configuration actually applied, after calibration.
	Filter   inclusion.Config
	Duration time.Duration
}

// Rebuild runs normalize, merge, enrich, price aggregation, popularity
// resolution, statistics, calibration and filtering, then publishes the
// new document. On error or cancellation the previous document stays
// published. Hooks run after the pass has released the build lock.
func (c *client) Rebuild(ctx context.Context, in Inputs) (*Result, error) {
	res, err := c.rebuild(ctx, in)
	if err != nil {
		return nil, err
	}
	c.hooks.trigger(res.Changes)
	return res, nil
}

func (c *client) rebuild(ctx context.Context, in Inputs) (*Result, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRun(ctx, runID)
	logger := logging.FromContext(ctx)

	if err := checkCanceled(ctx, "normalize"); err != nil {
		return nil, err
	}
	// provenance describes the latest pass only
	if c.options.tracker != nil {
		c.options.tracker.Clear()
	}
	var records []*catalog.RawRecord
	for _, s := range in.Stores {
		records = append(records, s.Records...)
	}
	entities, dropped := canonicalize.NormalizeAll(records)
	logger.Debug().Int("records", len(records)).Int("dropped", dropped).Msg("Normalized")

	if err := checkCanceled(ctx, "merge"); err != nil {
		return nil, err
	}
	merged := c.merger.Merge(entities)
	batch := make([]*catalog.Entity, len(merged))
	for i := range merged {
		batch[i] = &merged[i].Entity
	}

	enricher := &canonicalize.Enricher{Critic: in.Critic, Metadata: in.Metadata, Tracker: c.options.tracker}
	enrich := enricher.EnrichAll(batch)
	for i := range merged {
		pricing.Apply(&merged[i])
	}
	pop := c.resolver.Resolve(batch)
	logger.Debug().
		Int("merged", len(merged)).
		Int("critic_hits", enrich.CriticHits).
		Int("metadata_hits", enrich.MetadataHits).
		Int("popularity_unresolved", pop.Unresolved).
		Msg("Merged and enriched")

	if err := checkCanceled(ctx, "filter"); err != nil {
		return nil, err
	}
	stats := inclusion.ComputeStats(merged, nil)
	cfg := inclusion.Calibrate(c.options.filter, stats)
	kept := inclusion.NewFilter(cfg, c.options.now).Apply(merged)
	stats.TotalKept = len(kept)

	now := utc.Time{Time: c.options.now().UTC()}
	doc := &catalog.Document{
		Metadata: catalog.Metadata{
			Generated:     now,
			LastRefreshed: now,
			RunID:         runID,
			Sources:       documentSources(in),
			Filters:       cfg.Summary(),
			Stats:         stats,
		},
		Items: kept,
	}
	if err := doc.Seal(); err != nil {
		return nil, errors.WrapResource("seal", "catalog", runID, err)
	}

	if err := checkCanceled(ctx, "publish"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	prev := c.doc
	c.doc = doc
	c.mu.Unlock()

	var prevItems []catalog.CanonicalEntity
	if prev != nil {
		prevItems = prev.Items
	}
	changes := reconcile.Diff(prevItems, doc.Items)

	res := &Result{
		RunID:      runID,
		Document:   cloneDocument(doc),
		Changes:    changes,
		Dropped:    dropped,
		Enrich:     enrich,
		Popularity: pop,
		Filter:     cfg,
		Duration:   time.Since(start),
	}
	logger.Debug().
		Int("total_raw", stats.TotalRaw).
		Int("total_kept", stats.TotalKept).
		Int("added", len(changes.Added)).
		Int("removed", len(changes.Removed)).
		Dur("duration", res.Duration).
		Msg("Catalog published")
	return res, nil
}

func documentSources(in Inputs) []string {
	if in.Names != nil {
		return append([]string(nil), in.Names...)
	}
	names := make([]string, 0, len(in.Stores))
	for _, s := range in.Stores {
		names = append(names, s.Name)
	}
	return names
}

func checkCanceled(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapResource(stage, "catalog", logging.RunID(ctx), errors.ErrCanceled)
	}
	return nil
}

// Canonicalize normalizes, merges and prices a user's list so it can be
// composed into a view. No filter is applied.
func Canonicalize(records []*catalog.RawRecord) []catalog.CanonicalEntity {
	entities, _ := canonicalize.NormalizeAll(records)
	merged := reconcile.Merge(entities)
	for i := range merged {
		pricing.Apply(&merged[i])
	}
	return merged
}
