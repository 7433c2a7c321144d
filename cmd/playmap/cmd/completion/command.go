// Package completion implements the completion command.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Shells with completion support.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script on stdout.

Bash:
  $ source <(playmap completion bash)

Zsh:
  $ playmap completion zsh > "${fpath[1]}/_playmap"

Fish:
  $ playmap completion fish > ~/.config/fish/completions/playmap.fish

PowerShell:
  PS> playmap completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()
			switch args[0] {
			case ShellBash:
				return root.GenBashCompletionV2(w, true)
			case ShellZsh:
				return root.GenZshCompletion(w)
			case ShellFish:
				return root.GenFishCompletion(w, true)
			case ShellPowerShell:
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
