// Package playmap reconciles game catalog exports from several storefronts
// and caches into one published catalog.
//
// A Client owns the current catalog snapshot. Rebuild runs a full
// reconciliation pass and replaces the snapshot only when the pass
// succeeds, so readers always see a complete catalog:
//
//	pm, err := playmap.New(playmap.WithFilter(inclusion.DefaultConfig()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pm.OnTitleAdded(func(t catalog.CanonicalEntity) {
//	    log.Printf("new title: %s", t.Title)
//	})
//
//	res, err := sources.ReadAll(ctx, specs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := pm.Rebuild(ctx, playmap.InputsFrom(res)); err != nil {
//	    log.Fatal(err)
//	}
//
//	items, err := pm.View(owned, wishlist, view.Query{Sort: view.SortMetascore})
package playmap

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/logging"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/reconcile"
)

// Client manages a published catalog with rebuilds and event hooks.
type Client interface {

	// Catalog provides copy-on-read access to the catalog
	Catalog

	// Builder runs reconciliation passes
	Builder

	// Viewer composes per-user views
	Viewer

	// Persistence writes the current catalog
	Persistence

	// AutoRebuilder controls periodic rebuilds
	AutoRebuilder

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	merger   *reconcile.Merger
	resolver *popularity.Resolver

	// rebuilds are serialized; readers take mu only to swap or copy
	buildMu sync.Mutex
	mu      sync.RWMutex
	doc     *catalog.Document

	// auto rebuild state
	autoMu        sync.Mutex
	rebuildTicker *time.Ticker
	rebuildCancel context.CancelFunc

	hooks *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, errors.WrapResource("apply", "options", "", err)
	}

	var mergeOpts []reconcile.Option
	if o.policies != nil {
		mergeOpts = append(mergeOpts, reconcile.WithPolicies(o.policies))
	}
	if o.tracker != nil {
		mergeOpts = append(mergeOpts, reconcile.WithProvenance(o.tracker))
	}
	merger, err := reconcile.NewMerger(mergeOpts...)
	if err != nil {
		return nil, errors.WrapResource("create", "merger", "", err)
	}

	c := &client{
		options:  o,
		merger:   merger,
		resolver: popularity.NewResolver(o.popularity),
		hooks:    newHooks(),
	}

	if o.initialDocument != nil {
		c.doc = cloneDocument(o.initialDocument)
		logging.Debug().
			Int("items", len(c.doc.Items)).
			Str("fingerprint", c.doc.Metadata.Fingerprint).
			Msg("Initial catalog loaded")
	}

	if o.autoRebuildFunc != nil {
		if err := c.AutoRebuildOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-rebuild", "", err)
		}
	}

	return c, nil
}
