package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/hooks"
	"github.com/msalah0e/horizon/internal/parallel"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/ui"
)

var exportFormats = []string{"json", "yaml", "dot", "svg"}

func exportCmd() *cobra.Command {
	var (
		dir     string
		formats []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the workflow to a dated file",
		Long: `Write the workflow as horizon-workflow-YYYY-MM-DD.<ext>.

  horizon export                       # JSON snapshot, importable
  horizon export --format yaml,svg     # several formats at once
  horizon export --dir ~/Desktop`,
		Run: func(cmd *cobra.Command, args []string) {
			s, cfg, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			if dir == "" {
				dir = cfg.Canvas.ExportDir
			}
			for _, f := range formats {
				if !slices.Contains(exportFormats, f) {
					fail("Unknown format %q (want %s)", f, strings.Join(exportFormats, ", "))
				}
			}

			snap := s.Snapshot()
			scene := s.Scene()
			width, height := int(cfg.Canvas.ViewWidth), int(cfg.Canvas.ViewHeight)

			var tasks []parallel.Task
			for _, f := range formats {
				tasks = append(tasks, parallel.Task{Name: f, Fn: func(context.Context) (string, error) {
					if f == "json" {
						return s.Export(dir)
					}
					var data []byte
					var err error
					if f == "yaml" {
						data, err = persist.MarshalYAML(persist.Stamp(snap))
					} else {
						data, err = sceneBytes(scene, f, width, height)
					}
					if err != nil {
						return "", err
					}
					return writeExport(dir, f, data)
				}})
			}

			results := parallel.Run(cmd.Context(), tasks, 2)
			for _, r := range results {
				if r.OK {
					fmt.Printf("  %s %-5s %s\n", ui.StatusIcon(true), r.Name, r.Output)
					if err := hooks.Run(cmd.Context(), cfg.Hooks, hooks.PostExport, map[string]string{
						"PATH": r.Output, "FORMAT": r.Name,
					}); err != nil {
						ui.Warn.Printf("  %s post_export hook: %v\n", ui.WarnIcon(), err)
					}
				} else {
					fmt.Printf("  %s %-5s %v\n", ui.StatusIcon(false), r.Name, r.Err)
				}
			}
			if len(parallel.Failed(results)) > 0 {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default from config)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"json"}, "Formats: json, yaml, dot, svg")
	return cmd
}

// writeExport writes data under the dated export name with ext.
func writeExport(dir, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := strings.TrimSuffix(persist.ExportName(time.Now()), ".json") + "." + ext
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, data, 0o644)
}

// sceneBytes renders scene as "dot" or "svg".
func sceneBytes(scene *render.Scene, format string, width, height int) ([]byte, error) {
	if format == "dot" {
		return []byte(scene.DOT()), nil
	}
	var buf bytes.Buffer
	err := scene.WriteSVG(&buf, width, height)
	return buf.Bytes(), err
}
