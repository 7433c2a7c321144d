// Package application defines what commands need from the CLI app.
//
// Commands accept Application rather than the concrete app so they can be
// driven by a Mock in tests.
package application

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentstation/playmap"
	"github.com/agentstation/playmap/pkg/inclusion"
	"github.com/agentstation/playmap/pkg/popularity"
	"github.com/agentstation/playmap/pkg/sources"
)

// Application is the dependency surface of every command.
type Application interface {
	// Client returns a new engine configured from Settings plus opts.
	Client(opts ...playmap.Option) (playmap.Client, error)

	// Settings returns the resolved catalog settings.
	Settings() *Settings

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format, or "" to detect it.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

// Default input and output file names.
const (
	DefaultUSSource      = "nintendo_us_sales_import.json"
	DefaultUKSource      = "nintendo_uk_search_import.json"
	DefaultCriticCache   = "metacritic_cache.json"
	DefaultMetadataCache = "igdb_cache.json"
	DefaultOwned         = "owned.json"
	DefaultWishlist      = "wish_list.json"
	DefaultCatalogOut    = "store_catalog.json"
	DefaultSnapshotDB    = "playmap.db"
)

// Settings are the catalog inputs, outputs and thresholds. Relative paths
// resolve against DataDir.
type Settings struct {
	DataDir       string
	USSource      string
	UKSource      string
	CriticCache   string
	MetadataCache string
	Owned         string
	Wishlist      string
	CatalogOut    string
	SnapshotDB    string

	MetascoreMin        float64
	PopularityMin       *float64
	RecentMonths        int
	RequireReleaseDate  bool
	PopularitySentinels []float64
	GoodDealThreshold   float64
	LoadConcurrency     int
}

// Path resolves p against DataDir. Empty stays empty.
func (s *Settings) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || s.DataDir == "" {
		return p
	}
	return filepath.Join(s.DataDir, p)
}

// Filter returns the inclusion thresholds.
func (s *Settings) Filter() inclusion.Config {
	return inclusion.Config{
		MetascoreMin:       s.MetascoreMin,
		PopularityMin:      s.PopularityMin,
		RecentMonths:       s.RecentMonths,
		RequireReleaseDate: s.RequireReleaseDate,
	}
}

// Popularity returns the popularity resolver settings. An empty sentinel
// list disables sentinel detection.
func (s *Settings) Popularity() popularity.Config {
	cfg := popularity.DefaultConfig()
	if s.PopularitySentinels != nil {
		cfg.Sentinels = append([]float64(nil), s.PopularitySentinels...)
		cfg.DisableSentinels = len(s.PopularitySentinels) == 0
	}
	return cfg
}

// BuildSpecs lists the store and cache inputs of a build, followed by
// extra store files. Every configured input is optional.
func (s *Settings) BuildSpecs(extra ...string) []sources.Spec {
	var specs []sources.Spec
	add := func(id sources.ID, path string) {
		if path != "" {
			specs = append(specs, sources.NewSpec(id, s.Path(path), true))
		}
	}
	add(sources.StoreUSID, s.USSource)
	add(sources.StoreUKID, s.UKSource)
	add(sources.CriticID, s.CriticCache)
	add(sources.MetadataID, s.MetadataCache)
	for _, path := range extra {
		specs = append(specs, sources.Spec{Path: s.Path(path), Kind: sources.KindRecords})
	}
	return specs
}

// ListSpecs lists the owned and wishlist inputs.
func (s *Settings) ListSpecs() []sources.Spec {
	var specs []sources.Spec
	if s.Owned != "" {
		specs = append(specs, sources.NewSpec(sources.OwnedID, s.Path(s.Owned), true))
	}
	if s.Wishlist != "" {
		specs = append(specs, sources.NewSpec(sources.WishlistID, s.Path(s.Wishlist), true))
	}
	return specs
}
