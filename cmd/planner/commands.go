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

	"github.com/spf13/cobra"

	"planner/internal/auth"
	"planner/internal/config"
	"planner/internal/server"
	"planner/internal/storage/sqlstore"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Personal task lists and calendar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	root.PersistentFlags().String("db-path", "data/planner.db", "Path to sqlite database file (ignored when DATABASE_URL or PG_HOST is set)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server.

Settings come from flags, PLANNER_* environment variables, DATABASE_URL,
PG_USER/PG_HOST/PG_DATABASE/PG_PASSWORD/PG_PORT and SESSION_SECRET, or the
YAML file passed with --config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	serve.Flags().String("addr", ":3000", "HTTP listen address")
	serve.Flags().Duration("request-timeout", 10*time.Second, "Upper bound for a single request")
	serve.Flags().Duration("session-ttl", 24*time.Hour, "Lifetime of a login session")
	serve.Flags().Bool("secure-cookie", false, "Mark the session cookie Secure (HTTPS deployments)")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			store, err := sqlstore.Open(cmd.Context(), cfg.Database(), logger)
			if err != nil {
				return fmt.Errorf("unable to open database: %w", err)
			}
			return store.Close()
		},
	}

	root.AddCommand(serve, migrate)
	return root
}

func loadConfig(cmd *cobra.Command, file string) (config.Config, error) {
	v, err := config.New(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(v, file)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func runServe(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)
	logger.Info("planner " + version)

	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := sqlstore.Open(ctx, cfg.Database(), logger)
	cancel()
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	srv := server.New(store, sessions, logger, server.Options{
		RequestTimeout: cfg.RequestTimeout,
		SecureCookie:   cfg.SecureCookie,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
