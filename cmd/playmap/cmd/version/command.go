// Package version implements the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/pkg/constants"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Schema    string `json:"schema_version"`
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				Schema:    constants.SchemaVersion,
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == "" {
				cmd.Printf("playmap %s\n", info.Version)
				return nil
			}
			rows := [][]string{
				{"Version", info.Version},
				{"Commit", info.Commit},
				{"Built", info.Date},
				{"Built By", info.BuiltBy},
				{"Go", info.GoVersion},
				{"Platform", info.Platform},
				{"Catalog Schema", info.Schema},
			}
			return output.NewPrinter(cmd.OutOrStdout(), format).Print(table.Data{Headers: []string{"Property", "Value"}, Rows: rows}, info)
		},
	}
}
