// Package provenance implements the provenance command.
package provenance

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/identity"
	"github.com/agentstation/playmap/pkg/provenance"
)

// NewCommand creates the provenance command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		fields []string
		title  string
	)

	cmd := &cobra.Command{
		Use:     "provenance <file>",
		GroupID: "management",
		Short:   "Show which source supplied each merged field",
		Long: `Provenance prints a file written by build --provenance. The newest
decision for each field is marked with an arrow.`,
		Args: cobra.ExactArgs(1),
		Example: `  playmap build --provenance provenance.yaml
  playmap provenance provenance.yaml --title Hades
  playmap provenance provenance.yaml --field 'price*' --field metascore`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
			if err != nil {
				return err
			}
			f, err := provenance.Load(args[0])
			if err != nil {
				return err
			}
			if f == nil {
				return &errors.NotFoundError{Resource: "provenance", ID: args[0]}
			}

			m := f.Provenance
			if title != "" {
				m = m.ForKey(identity.MatchKey(title))
			}
			return printer.Print(table.ProvenanceToTableData(m, fields), m)
		},
	}

	cmd.Flags().StringArrayVar(&fields, "field", nil, "field name or glob (repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "only this title")
	return cmd
}
