package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/session"
	"github.com/msalah0e/horizon/internal/ui"
)

func renderCmd() *cobra.Command {
	var (
		out    string
		format string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the canvas as SVG or Graphviz DOT",
		Long: `Render the current canvas. With --watch the output is rewritten whenever
the workflow file changes (file store only).

  horizon render > canvas.svg
  horizon render --format dot | dot -Tpng > canvas.png
  horizon render --out canvas.svg --watch`,
		Run: func(cmd *cobra.Command, args []string) {
			if format != "svg" && format != "dot" {
				fail("Unknown format %q (want svg or dot)", format)
			}
			s, cfg, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			width, height := int(cfg.Canvas.ViewWidth), int(cfg.Canvas.ViewHeight)

			write := func() error {
				data, err := sceneBytes(s.Scene(), format, width, height)
				if err != nil {
					return err
				}
				if out == "" {
					_, err = os.Stdout.Write(data)
					return err
				}
				return os.WriteFile(out, data, 0o644)
			}

			if err := write(); err != nil {
				fail("Render failed: %v", err)
			}
			if !watch {
				return
			}
			fs, ok := s.Store().(*persist.FileStore)
			if !ok {
				fail("--watch needs the file store (current: %s)", storeOptions(cfg).Backend)
			}
			if out == "" {
				fail("--watch needs --out")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Printf("  %s Watching %s → %s %s\n", ui.Info.Sprint("◉"), fs.Path(), out, ui.Subtle.Sprint("(Ctrl-C to stop)"))
			if err := watchAndRender(ctx, fs, s, write); err != nil {
				fail("Watch failed: %v", err)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "svg or dot")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when the workflow file changes")
	return cmd
}

// watchAndRender reloads s from fs on every outside change and calls write.
// The watcher and the renderer run in one errgroup until ctx is done.
func watchAndRender(ctx context.Context, fs *persist.FileStore, s *session.Session, write func() error) error {
	updates := make(chan persist.Snapshot, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(updates)
		return fs.Watch(ctx, func(snap persist.Snapshot) {
			select {
			case <-updates:
			default:
			}
			updates <- snap
		}, func(err error) {
			logger.Warn("workflow file changed but could not be read", zap.Error(err))
		})
	})
	g.Go(func() error {
		for snap := range updates {
			s.Reload(snap)
			if err := write(); err != nil {
				return err
			}
			fmt.Printf("  %s re-rendered (%d cards)\n", ui.StatusIcon(true), len(snap.Cards))
		}
		return nil
	})
	return g.Wait()
}
