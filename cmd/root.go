package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/msalah0e/horizon/internal/activity"
	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/session"
	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/vault"
)

var version = "0.3.0"

var (
	verbose      bool
	storeBackend string
	storeName    string
	logger       = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "horizon — plan distributed team workflows on a canvas",
	Long: ui.Brand.Sprint(ui.Globe+" horizon") + " — a workflow canvas for teams across time zones\n" +
		ui.Subtle.Sprint("Cards, connections and a viewport, persisted and renderable from the terminal"),
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ui.Emoji = cfg.UI.Emoji
		if !cfg.UI.Color {
			color.NoColor = true
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		runStatus(cmd.Context())
	},
}

func init() {
	rootCmd.SetVersionTemplate("horizon {{ .Version }}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Storage backend: file, sqlite, redis or memory (default from config)")
	rootCmd.PersistentFlags().StringVar(&storeName, "name", "", "Workflow name within the store (default from config)")

	rootCmd.AddCommand(
		cardCmd(),
		connectCmd(),
		disconnectCmd(),
		viewCmd(),
		exportCmd(),
		importCmd(),
		clearCmd(),
		renderCmd(),
		replayCmd(),
		teamCmd(),
		assistCmd(),
		promptsCmd(),
		keysCmd(),
		serveCmd(),
		logCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ─── Shared helpers ─────────────────────────────────────────

// fail prints a red message and exits 1.
func fail(format string, args ...any) {
	ui.Bad.Printf("  "+format+"\n", args...)
	os.Exit(1)
}

// redisURLKey names the env var or vault entry holding a redis URL with
// credentials, used when storage.redis_url is empty.
const redisURLKey = "HORIZON_REDIS_URL"

func storeOptions(cfg *config.Config) persist.Options {
	opts := persist.Options{
		Backend:  cfg.Storage.Backend,
		Path:     cfg.Storage.Path,
		RedisURL: cfg.Storage.RedisURL,
		Name:     cfg.Storage.Name,
	}
	if storeBackend != "" {
		opts.Backend = storeBackend
		if storeBackend != cfg.Storage.Backend {
			opts.Path = ""
		}
	}
	if storeName != "" {
		opts.Name = storeName
	}
	if opts.Backend == persist.BackendRedis && opts.RedisURL == "" {
		opts.RedisURL, _ = vault.Resolve(vault.New(), redisURLKey)
	}
	return opts
}

// sessionOptions controls how openSession answers prompts.
type sessionOptions struct {
	yes bool // approve every confirmation
}

// openSession opens the configured store and restores the canvas. Commits
// are saved as they happen; call close when done.
func openSession(ctx context.Context, so sessionOptions) (*session.Session, *config.Config, func()) {
	cfg := config.Load()
	store, err := persist.Open(storeOptions(cfg))
	if err != nil {
		fail("Cannot open store: %v", err)
	}

	var confirm session.Confirmer = session.Always(true)
	if !so.yes {
		confirm = session.ConfirmFunc(func(_ context.Context, p session.Prompt) (bool, error) {
			return ui.AskYesNo(os.Stdin, os.Stdout, p.Title, p.Message)
		})
	}

	s := session.New(session.Options{
		Store:      store,
		Confirmer:  confirm,
		Notifier:   terminalNotifier{},
		Journal:    activity.Open(activity.DefaultPath()),
		Logger:     logger,
		ViewWidth:  cfg.Canvas.ViewWidth,
		ViewHeight: cfg.Canvas.ViewHeight,
	})
	if _, err := s.Restore(ctx); err != nil {
		store.Close()
		fail("Cannot load workflow: %v", err)
	}
	s.Scene().Grid = cfg.Canvas.Grid

	return s, cfg, func() {
		if err := s.Close(context.Background()); err != nil {
			ui.Warn.Printf("  %s Could not save the workflow: %v\n", ui.WarnIcon(), err)
		}
	}
}

type terminalNotifier struct{}

func (terminalNotifier) Notify(level session.Level, message string) {
	ui.Notice(os.Stdout, string(level), message)
}
