package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/ui"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}
	cmd.AddCommand(configShowCmd(), configInitCmd(), configPathCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Run: func(cmd *cobra.Command, args []string) {
			if err := toml.NewEncoder(os.Stdout).Encode(config.Load()); err != nil {
				fail("%v", err)
			}
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if none exists",
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.EnsureExists(); err != nil {
				fail("Cannot write config: %v", err)
			}
			fmt.Printf("  %s Config at %s\n", ui.StatusIcon(true), config.Path())
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.Path())
		},
	}
}
