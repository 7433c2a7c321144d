// Package key implements the key command.
package key

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/pkg/identity"
)

// Key pairs a title with its match key.
type Key struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

// NewCommand creates the key command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "key <title>...",
		GroupID: "management",
		Short:   "Print the match key titles merge under",
		Args:    cobra.MinimumNArgs(1),
		Example: `  playmap key "The Legend of Zelda™: Tears of the Kingdom"
  playmap key Hades "HADES" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
			if err != nil {
				return err
			}
			keys := make([]Key, 0, len(args))
			rows := make([][]string, 0, len(args))
			for _, title := range args {
				k := Key{Title: title, Key: identity.MatchKey(title)}
				keys = append(keys, k)
				rows = append(rows, []string{k.Title, k.Key})
			}
			return printer.Print(table.Data{Headers: []string{"Title", "Key"}, Rows: rows}, keys)
		},
	}
}
