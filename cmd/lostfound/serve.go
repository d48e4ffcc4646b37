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

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	serveCmd.Flags().StringP("user", "u", "admin", "admin username created on first run")
}

func runServe(cmd *cobra.Command, args []string) error {
	database, st, mg, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()

	// Schema and reference data are idempotent, so every start ensures them.
	if err := mg.Up(); err != nil {
		return err
	}
	if err := db.Seed(ctx, mg); err != nil {
		return err
	}
	password, err := ensureAdmin(ctx, st, cfg.Admin.Username)
	if err != nil {
		return err
	}
	if password != "" {
		printAdminCreated(cfg.Admin.Username, password)
		fmt.Println()
	}

	slog.Info("database ready", "driver", cfg.DB.Driver)

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// Generated on first run and kept in the settings table.
		jwtSecret, err = st.GetJWTSecret(ctx)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	handler := api.NewRouter(st, mg, api.Options{
		JWTSecret:      jwtSecret,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
