// Package view implements the view command.
package view

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/catalog"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/pkg/view"
)

// NewCommand creates the view command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "view",
		GroupID: "core",
		Short:   "Browse the catalog against your owned games and wishlist",
		Args:    cobra.NoArgs,
		Long: `View joins the built catalog with your owned games and wishlist and
prints the titles that match the query.

Every title is flagged: O owned, W wishlist, U upcoming, M shares tags with
games you own, $ wished and discounted past the deal threshold. Titles that
appear only in your lists are included too.

--where takes a CEL expression over the item, for example:
  metascore >= 80 && size(tags) > 2`,
		Example: `  playmap view --search zelda
  playmap view --only wishlist --sort discount
  playmap view --type game --players co-op --matches --limit 20
  playmap view --where 'discount >= 50 && wished'
  playmap view --summary
  playmap view --facets -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	flags = addFlags(cmd)
	return cmd
}

// Execute composes the view and prints it.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
	if err != nil {
		return err
	}
	q, err := flags.query(cmd)
	if err != nil {
		return err
	}

	client, err := catalog.Client(app, flags.Catalog)
	if err != nil {
		return err
	}
	owned, wishlist, err := catalog.Lists(cmd.Context(), app)
	if err != nil {
		return err
	}

	items, err := client.View(owned, wishlist, q)
	if err != nil {
		return err
	}
	app.Logger().Debug().
		Int("owned", len(owned)).
		Int("wishlist", len(wishlist)).
		Int("results", len(items)).
		Msg("View composed")

	switch {
	case flags.Summary:
		s := view.Summarize(items)
		return printer.Print(table.SummaryToTableData(s), s)
	case flags.Facets:
		counts := view.TagCounts(items)
		return printer.Print(table.TagCountsToTableData(counts), counts)
	}
	return printer.Print(table.ItemsToTableData(items, printer.Wide()), items)
}
