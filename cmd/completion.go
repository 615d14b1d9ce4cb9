package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/prompt"
	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/vault"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(horizon completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(horizon completion zsh)"

  # Fish
  horizon completion fish | source

  # PowerShell
  horizon completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				_ = rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				_ = rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				_ = rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				_ = rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}

// cardCompletionFunc completes the first argument with card ids from the store.
func cardCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := persist.Open(storeOptions(config.Load()))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()
	snap, ok, err := store.Load(cmd.Context())
	if err != nil || !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, c := range snap.Cards {
		completions = append(completions, strconv.Itoa(c.ID)+"\t"+render.PlainText(c.Title))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// keyCompletionFunc completes vault key names.
func keyCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys, err := vault.New().List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// promptCompletionFunc completes saved prompt names.
func promptCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	list, err := prompt.Open(prompt.DefaultDir()).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, t := range list {
		names = append(names, t.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
