package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"deepmirror/internal/client"
	"deepmirror/internal/config"
	"deepmirror/internal/orchestrator"
	"deepmirror/internal/session"
	"deepmirror/internal/session/localstore"
)

var (
	noColor bool
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Career mirror: a guided conversation that maps your career strengths",
	Long: `Career mirror interviews you about your work, then turns the conversation
into a career report, role comparisons and an execution plan.

Type a message to chat. Slash commands (/help) drive the rest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive session (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your hosted conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if cfg.Token == "" {
			return fmt.Errorf("sign in first: set MIRROR_TOKEN or pass --token")
		}
		logger, closeLog := newLogger(cfg)
		defer closeLog()
		api := client.New(cfg.ServerURL, cfg.Token, logger)

		conversations, err := api.ListConversations(cmd.Context())
		if err != nil {
			return err
		}
		printConversations(os.Stdout, conversations)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the local transcript and plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		cfg := loadConfig(cmd)

		app, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.orch.ClearHistory(cmd.Context(), yes); err != nil {
			if errors.Is(err, session.ErrNotConfirmed) {
				return fmt.Errorf("this deletes your local history; rerun with --yes to confirm")
			}
			return err
		}
		printSuccess("Local history cleared")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "API server URL (default $MIRROR_SERVER_URL)")
	rootCmd.PersistentFlags().String("token", "", "access token (default $MIRROR_TOKEN)")
	rootCmd.PersistentFlags().String("data-dir", "", "local data directory (default $MIRROR_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "also write debug logs to stderr")

	clearCmd.Flags().Bool("yes", false, "confirm deletion")

	rootCmd.AddCommand(chatCmd, conversationsCmd, clearCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment (and .env) then applies flag overrides
func loadConfig(cmd *cobra.Command) *config.ClientConfig {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Token = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	return cfg
}

// newLogger writes diagnostics to <data-dir>/logs so they stay out of the
// conversation. --debug mirrors them to stderr.
func newLogger(cfg *config.ClientConfig) (*slog.Logger, func() error) {
	opts := config.LogOptions{
		Dir:    filepath.Join(cfg.DataDir, "logs"),
		Prefix: "mirror",
		Keep:   5,
		Level:  slog.LevelInfo,
	}
	if debug {
		opts.Level = slog.LevelDebug
		opts.Console = os.Stderr
	}

	logger, closeFn, err := config.NewLogger(opts)
	if err != nil {
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		fallback.Warn("file logging unavailable", "error", err)
		return fallback, closeFn
	}
	return logger, closeFn
}

type app struct {
	closeLog func() error
	store    *localstore.Store
	api      *client.Client
	syncer   *session.Syncer
	orch     *orchestrator.Orchestrator
}

func newApp(ctx context.Context, cfg *config.ClientConfig) (*app, error) {
	logger, closeLog := newLogger(cfg)

	store, err := localstore.Open(cfg.DataDir)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	sess := session.New(store, logger)
	if err := sess.Load(ctx); err != nil {
		store.Close()
		closeLog()
		return nil, err
	}

	api := client.New(cfg.ServerURL, cfg.Token, logger)
	syncer := session.NewSyncer(api, api, logger)
	orch := orchestrator.New(sess, api, api, syncer, orchestrator.Config{
		UnlockAfterTurns: cfg.UnlockAfterTurns,
		Progress:         orchestrator.DefaultProgressConfig(),
	}, logger)

	return &app{closeLog: closeLog, store: store, api: api, syncer: syncer, orch: orch}, nil
}

// close waits for background title updates before releasing the store
func (a *app) close() {
	a.syncer.Wait()
	a.store.Close()
	a.closeLog()
}

func runChat(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	app, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.close()

	r := newREPL(app.orch, app.api, os.Stdin, os.Stdout)
	return r.run(cmd.Context())
}
