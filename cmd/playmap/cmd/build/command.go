// Package build implements the build command.
package build

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
)

// NewCommand creates the build command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Build the store catalog from storefront exports",
		Args:    cobra.NoArgs,
		Long: `Build reconciles the configured storefront exports into one catalog:

1. Store exports are normalized and merged by title
2. Critic and metadata caches fill scores, popularity and release dates
3. Regional prices are compared and the best price is chosen
4. Titles are kept when they are well reviewed, or recent and popular

Missing inputs are skipped. A malformed input is reported and skipped
without stopping the build. The catalog is written as JSON, or YAML when
--out ends in .yaml.`,
		Example: `  playmap build                               # Build with configured thresholds
  playmap build --metascore 75                # Raise the quality floor
  playmap build --popularity 60 --recent-months 6
  playmap build --out catalog.yaml --snapshot-db playmap.db
  playmap build --source eshop_jp.json        # Merge an extra store export
  playmap build --watch 1h                    # Rebuild hourly until interrupted`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	flags = addFlags(cmd)
	return cmd
}
