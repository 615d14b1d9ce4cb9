package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/vault"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"key"},
		Short:   "Manage API keys in the vault",
	}
	cmd.AddCommand(
		keysSetCmd(),
		keysGetCmd(),
		keysRmCmd(),
		keysListCmd(),
	)
	return cmd
}

func keysSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set [KEY_NAME]",
		Aliases: []string{"add"},
		Short:   "Store an API key in the vault (default: the assist key)",
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			keyName := config.Load().Assist.APIKeyEnv
			if len(args) == 1 {
				keyName = args[0]
			}
			v := vault.New()

			fmt.Printf("  Enter value for %s: ", ui.Brand.Sprint(keyName))
			value, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			value = strings.TrimSpace(value)
			if value == "" {
				ui.Warn.Println("  Empty value, key not stored")
				return
			}

			if err := v.Set(keyName, value); err != nil {
				fail("Failed to store key: %v", err)
			}
			ui.Good.Printf("  %s %s stored in vault\n", ui.StatusIcon(true), keyName)
		},
	}
}

func keysGetCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:               "get <KEY_NAME>",
		Short:             "Show where a key resolves from (masked unless --reveal)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: keyCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			val, src := vault.Resolve(vault.New(), args[0])
			if src == vault.SourceNone {
				fail("%s is not set in the environment or the vault", args[0])
			}
			shown := vault.Mask(val)
			if reveal {
				shown = val
			}
			fmt.Printf("  %s  %s  %s\n", ui.Brand.Sprint(args[0]), shown, ui.Subtle.Sprintf("(%s)", src))
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full value")
	return cmd
}

func keysRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <KEY_NAME>",
		Aliases:           []string{"remove", "delete"},
		Short:             "Remove an API key from the vault",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: keyCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			if err := vault.New().Delete(args[0]); err != nil {
				fail("Failed to remove key: %v", err)
			}
			ui.Good.Printf("  %s %s removed from vault\n", ui.StatusIcon(true), args[0])
		},
	}
}

func keysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored API keys (masked values)",
		Run: func(cmd *cobra.Command, args []string) {
			v := vault.New()
			keys, err := v.List()
			if err != nil {
				fail("Failed to list keys: %v", err)
			}
			if len(keys) == 0 {
				fmt.Println("  No API keys stored.")
				fmt.Println("  Run `horizon keys set` to add the Gemini key")
				return
			}

			cfg := config.Load()
			ui.Banner("vault")
			var rows [][]string
			for _, key := range keys {
				masked := "****"
				if val, err := v.Get(key); err == nil {
					masked = vault.Mask(val)
				}
				rows = append(rows, []string{key, masked, keyUse(cfg, key)})
			}
			ui.Table([]string{"Key", "Value", "Used by"}, rows)
			fmt.Printf("\n  %d keys stored\n", len(keys))
		},
	}
}

// keyUse says which part of horizon reads a vault entry.
func keyUse(cfg *config.Config, key string) string {
	switch key {
	case cfg.Assist.APIKeyEnv:
		return "assist"
	case redisURLKey:
		return "storage (redis)"
	default:
		return "-"
	}
}
