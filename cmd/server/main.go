package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/celebration-board/internal/repositories"
	"github.com/anonto42/celebration-board/internal/router"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/pkg/config"
	"github.com/anonto42/celebration-board/pkg/storage"
	"github.com/spf13/cobra"
)

const sessionPurgeInterval = time.Hour

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serveCmd := newServeCommand()
	root := &cobra.Command{
		Use:          "celebration-board",
		Short:        "Internal celebration board",
		Long:         "Users share celebrations, comment and like; admins moderate posts and manage admin rights.",
		SilenceUsage: true,
		RunE:         serveCmd.RunE, // serve by default
	}
	root.AddCommand(serveCmd, newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema, seed the super admin and start the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			if err := config.Migrate(db.SQL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema is up to date", "driver", cfg.DatabaseDriver)
			return nil
		},
	}
}

func setup() (*config.Config, *slog.Logger) {
	config.LoadDotEnv()
	cfg := config.Load()
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger
}

func serve(ctx context.Context) error {
	cfg, logger := setup()
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET environment variable not set")
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := config.Migrate(db.SQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, err := newStore(cfg, db)
	if err != nil {
		return err
	}

	board := services.NewBoard(repositories.New(db.SQL), store, services.Settings{
		SuperAdminEmail:  cfg.SuperAdminEmail,
		AdminPassword:    cfg.AdminPassword,
		CommentMaxLength: cfg.CommentMaxLength,
		SessionSecret:    []byte(cfg.SessionSecret),
		SessionTTL:       cfg.SessionTTL,
	}, logger)
	if _, err := board.EnsureSuperAdmin(ctx); err != nil {
		return err
	}

	e, err := router.New(board, logger)
	if err != nil {
		return err
	}
	config.SetupMiddleware(e, logger, cfg.MaxUploadBytes())
	router.SetupRoutes(e, board, db.SQL, logger, router.Options{SecureCookies: cfg.IsProduction()})

	go purgeSessions(ctx, board, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newStore(cfg *config.Config, db *config.DB) (storage.Store, error) {
	policy := storage.DefaultPolicy()
	policy.MaxSize = cfg.MaxUploadBytes()

	switch cfg.AttachmentBackend {
	case config.BackendGridFS:
		return storage.NewGridFSStore(db.Mongo.Database(cfg.MongoDatabase), policy)
	case config.BackendLocal:
		return storage.NewLocalStore(cfg.UploadDir, policy)
	default:
		return nil, fmt.Errorf("unsupported ATTACHMENT_BACKEND %q", cfg.AttachmentBackend)
	}
}

// purgeSessions deletes expired sessions until ctx is done.
func purgeSessions(ctx context.Context, board *services.Board, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		if _, err := board.PurgeExpiredSessions(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("session purge failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
