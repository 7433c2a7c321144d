package build

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/pkg/inclusion"
)

// Flags holds the build command flags.
type Flags struct {
	Metascore           float64
	Popularity          float64
	RecentMonths        int
	RequireRelease      bool
	AllowMissingRelease bool
	Out                 string
	Sources             []string
	Provenance          string
	SnapshotDB          string
	Watch               time.Duration
}

func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	f := cmd.Flags()
	f.Float64Var(&flags.Metascore, "metascore", 0, "minimum critic score for scored titles")
	f.Float64Var(&flags.Popularity, "popularity", 0, "minimum popularity for unscored titles (0 calibrates from the data)")
	f.IntVar(&flags.RecentMonths, "recent-months", 0, "recency window in months for unscored titles (0 disables)")
	f.BoolVar(&flags.RequireRelease, "require-release", false, "reject unscored titles without a release date")
	f.BoolVar(&flags.AllowMissingRelease, "allow-missing-release", false, "keep unscored titles without a release date")
	f.StringVar(&flags.Out, "out", "", "catalog output path (.json or .yaml)")
	f.StringArrayVar(&flags.Sources, "source", nil, "extra store export to merge (repeatable)")
	f.StringVar(&flags.Provenance, "provenance", "", "write field provenance to this YAML file")
	f.StringVar(&flags.SnapshotDB, "snapshot-db", "", "record the build in this SQLite database")
	f.DurationVar(&flags.Watch, "watch", 0, "keep rebuilding on this interval until interrupted")
	cmd.MarkFlagsMutuallyExclusive("require-release", "allow-missing-release")
	return flags
}

// filter merges the changed flags over the configured thresholds.
func (f *Flags) filter(cmd *cobra.Command, settings *application.Settings) inclusion.Config {
	cfg := settings.Filter()
	changed := cmd.Flags().Changed
	if changed("metascore") {
		cfg.MetascoreMin = f.Metascore
	}
	if changed("popularity") {
		p := f.Popularity
		cfg.PopularityMin = &p
	}
	if changed("recent-months") {
		cfg.RecentMonths = f.RecentMonths
	}
	if f.RequireRelease {
		cfg.RequireReleaseDate = true
	}
	if f.AllowMissingRelease {
		cfg.RequireReleaseDate = false
	}
	return cfg
}
