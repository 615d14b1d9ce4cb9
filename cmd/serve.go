package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/activity"
	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/serve"
	"github.com/msalah0e/horizon/internal/ui"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the canvas and the AI advisor over HTTP",
		Long: `Run the HTTP API for the live canvas.

  GET  /health                      readiness (503 when degraded)
  POST /api/assist                  AI advisor
  GET  /api/workflow                snapshot JSON
  PUT  /api/workflow                replace the snapshot
  GET  /api/workflow/export         dated export download
  POST /api/workflow/import         import (needs ?confirm=true)
  GET  /api/workflow/scene.svg      rendered canvas
  POST /api/workflow/events         pointer events (?confirm=true for deletes)`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			store, err := persist.Open(storeOptions(cfg))
			if err != nil {
				fail("Cannot open store: %v", err)
			}
			srv := serve.New(serve.Options{
				Store:      store,
				Journal:    activity.Open(activity.DefaultPath()),
				Assistant:  newAssistant(cmd, cfg),
				Logger:     logger,
				ViewWidth:  cfg.Canvas.ViewWidth,
				ViewHeight: cfg.Canvas.ViewHeight,
				Watch:      cfg.Server.Watch && !noWatch,
			})
			if _, err := srv.Restore(cmd.Context()); err != nil {
				fail("Cannot load workflow: %v", err)
			}

			ln, err := net.Listen("tcp", cfg.Server.ListenAddr())
			if err != nil {
				fail("Cannot listen: %v", err)
			}

			ui.Banner("serve")
			fmt.Printf("  Listening on %s\n", ui.Brand.Sprintf("http://%s", ln.Addr()))
			fmt.Printf("  Store:       %s\n", storeOptions(cfg).Backend)
			fmt.Println(ui.Subtle.Sprint("  Ctrl-C to stop"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = srv.Serve(ctx, ln)
			if cerr := store.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				fail("Server stopped: %v", err)
			}
			fmt.Printf("\n  %s Stopped, workflow saved\n", ui.StatusIcon(true))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8420, "Port to listen on")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1", "Address to bind")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not follow outside changes to the workflow file")
	return cmd
}
