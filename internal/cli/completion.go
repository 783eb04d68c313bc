package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for cdhidef.

The script is written to stdout. To try it in the current shell:

  cdhidef completion fish | source           # fish
  source <(cdhidef completion bash)          # bash
  cdhidef completion powershell | Out-String | Invoke-Expression

To install it permanently, redirect the output to the completion
directory your shell loads at startup, for example:

  cdhidef completion fish > ~/.config/fish/completions/cdhidef.fish
  cdhidef completion zsh > "${fpath[1]}/_cdhidef"
  cdhidef completion bash > ~/.local/share/bash-completion/completions/cdhidef

Zsh needs compinit enabled in ~/.zshrc before completions load.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
