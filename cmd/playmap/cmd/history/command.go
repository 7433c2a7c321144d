// Package history implements the history command.
package history

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
)

// NewCommand creates the history command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		db    string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "management",
		Short:   "List catalog builds recorded in the snapshot database",
		Args:    cobra.NoArgs,
		Example: `  playmap history --snapshot-db playmap.db
  playmap history --limit 5 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
			if err != nil {
				return err
			}
			if db == "" {
				db = app.Settings().Path(app.Settings().SnapshotDB)
			}
			if db == "" {
				return &errors.ConfigError{Component: "snapshot_db", Message: "no snapshot database; set --snapshot-db or snapshot_db"}
			}

			ctx := cmd.Context()
			snapshots, err := store.OpenSnapshotStore(ctx, db)
			if err != nil {
				return err
			}
			defer snapshots.Close()

			list, err := snapshots.List(ctx, limit)
			if err != nil {
				return err
			}
			return printer.Print(table.SnapshotsToTableData(list), list)
		},
	}

	cmd.Flags().StringVar(&db, "snapshot-db", "", "SQLite snapshot database (default: snapshot_db)")
	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultHistoryLimit, "maximum snapshots (0 for all)")
	return cmd
}
