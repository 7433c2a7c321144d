// Package stats implements the stats command.
package stats

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/catalog"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
)

// NewCommand creates the stats command.
func NewCommand(app application.Application) *cobra.Command {
	var titles bool

	cmd := &cobra.Command{
		Use:     "stats [catalog]",
		GroupID: "core",
		Short:   "Show how a catalog was built",
		Args:    cobra.MaximumNArgs(1),
		Example: `  playmap stats
  playmap stats store_catalog.yaml -o json
  playmap stats --titles -o wide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			doc, err := catalog.Open(app, path)
			if err != nil {
				return err
			}
			if titles {
				return printer.Print(table.TitlesToTableData(doc.Items, printer.Wide()), doc.Items)
			}
			return printer.Print(table.StatsToTableData(doc.Metadata), doc.Metadata)
		},
	}

	cmd.Flags().BoolVar(&titles, "titles", false, "list the kept titles instead")
	return cmd
}
