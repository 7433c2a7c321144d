// Package catalog provides the catalog loading steps shared by commands.
package catalog

import (
	"context"

	"github.com/agentstation/playmap"
	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/sources"
)

// Open reads the published catalog document at path, or at the configured
// catalog_out when path is empty.
func Open(app application.Application, path string) (*catalog.Document, error) {
	if path == "" {
		path = app.Settings().Path(app.Settings().CatalogOut)
	}
	if path == "" {
		return nil, &errors.ConfigError{Component: "catalog_out", Message: "no catalog path configured"}
	}
	return store.ReadDocument(path)
}

// Client returns an engine preloaded with the catalog at path.
func Client(app application.Application, path string) (playmap.Client, error) {
	doc, err := Open(app, path)
	if err != nil {
		return nil, err
	}
	return app.Client(playmap.WithInitialDocument(doc))
}

// Lists loads and canonicalizes the owned games and wishlist. Inputs that
// fail to load are logged and treated as empty.
func Lists(ctx context.Context, app application.Application) (owned, wishlist []catalog.CanonicalEntity, err error) {
	settings := app.Settings()
	loader := sources.NewLoader()
	if settings.LoadConcurrency > 0 {
		loader.Concurrency = settings.LoadConcurrency
	}

	res, err := loader.Load(ctx, settings.ListSpecs())
	if err != nil {
		return nil, nil, err
	}
	logger := app.Logger()
	for _, e := range res.Errors {
		logger.Warn().Err(e).Msg("Skipping list")
	}
	return playmap.Canonicalize(res.Records(sources.OwnedID)), playmap.Canonicalize(res.Records(sources.WishlistID)), nil
}
