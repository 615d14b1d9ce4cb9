package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/hooks"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/session"
	"github.com/msalah0e/horizon/internal/ui"
)

func importCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the workflow with an exported JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := args[0]
			s, cfg, done := openSession(cmd.Context(), sessionOptions{yes: yes})
			defer done()

			var (
				ok  bool
				err error
			)
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				ok, err = importYAML(cmd, s, path)
			default:
				ok, err = s.ImportFile(cmd.Context(), path)
			}
			switch {
			case session.IsMalformed(err):
				os.Exit(1)
			case err != nil && !ok:
				fail("Import failed: %v", err)
			case !ok:
				fmt.Println("  Cancelled")
				return
			}

			in := s.Graph().Insights()
			fmt.Printf("  %d cards, %d connections\n", in.Cards, in.Connections)
			if err := hooks.Run(cmd.Context(), cfg.Hooks, hooks.PostImport, map[string]string{"PATH": path}); err != nil {
				ui.Warn.Printf("  %s post_import hook: %v\n", ui.WarnIcon(), err)
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func importYAML(cmd *cobra.Command, s *session.Session, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	js, err := persist.YAMLToJSON(data)
	if err != nil {
		ui.Notice(os.Stdout, string(session.LevelError), "Failed to import workflow. Invalid file format.")
		return false, err
	}
	return s.Import(cmd.Context(), js)
}
