package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/playmap/cmd/playmap/cmd/build"
	"github.com/agentstation/playmap/cmd/playmap/cmd/completion"
	"github.com/agentstation/playmap/cmd/playmap/cmd/history"
	"github.com/agentstation/playmap/cmd/playmap/cmd/key"
	"github.com/agentstation/playmap/cmd/playmap/cmd/provenance"
	"github.com/agentstation/playmap/cmd/playmap/cmd/stats"
	"github.com/agentstation/playmap/cmd/playmap/cmd/version"
	"github.com/agentstation/playmap/cmd/playmap/cmd/view"
)

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "playmap",
		Short:   "Game catalog reconciliation",
		Version: a.version,
		Long: `Playmap merges storefront exports into one catalog of games.

Store feeds are normalized, merged by title, enriched from critic and
metadata caches, priced per region and filtered by quality, recency and
popularity. The resulting catalog can then be viewed against your owned
games and wishlist.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.playmap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	_ = rootCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"table", "json", "yaml", "wide"}, cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{"trace", "debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.SetVersionTemplate("playmap {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand applies the persistent flags before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" && path != a.config.ConfigFile {
		config, err := LoadConfigFile(path)
		if err != nil {
			return err
		}
		*a.config = *config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(build.NewCommand(a))
	rootCmd.AddCommand(view.NewCommand(a))
	rootCmd.AddCommand(stats.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(history.NewCommand(a))
	rootCmd.AddCommand(key.NewCommand(a))
	rootCmd.AddCommand(provenance.NewCommand(a))

	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())
}

// ExitOnError prints err to stderr and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool panics if the flag is not defined; the persistent flags are
// defined in createRootCommand.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
