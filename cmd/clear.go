package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/hooks"
	"github.com/msalah0e/horizon/internal/ui"
)

func clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every card and connection",
		Run: func(cmd *cobra.Command, args []string) {
			s, cfg, done := openSession(cmd.Context(), sessionOptions{yes: yes})
			defer done()

			cleared, err := s.Clear(cmd.Context())
			if err != nil {
				fail("Clear failed: %v", err)
			}
			if !cleared {
				fmt.Println("  Cancelled")
				return
			}
			if err := hooks.Run(cmd.Context(), cfg.Hooks, hooks.PostClear, nil); err != nil {
				ui.Warn.Printf("  %s post_clear hook: %v\n", ui.WarnIcon(), err)
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
