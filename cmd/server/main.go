package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"intervue/internal/app"
	"intervue/internal/config"
	"intervue/internal/logger"
)

// @title Intervue Coordination API
// @version 1.0
// @description Interview rooms, session lifecycle and process log reports.
// @BasePath /
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var port string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}
	serve.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	indexes := &cobra.Command{
		Use:   "indexes",
		Short: "Create MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:          "intervue",
		Short:        "Interview session coordination service",
		Long:         `HTTP + WebSocket API. Commands: serve (default), indexes.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, indexes)
	return root
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func runIndexes(ctx context.Context) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.EnsureIndexes(ctx); err != nil {
		return err
	}
	a.Log.Info("indexes ensured")
	return nil
}

func runServe(ctx context.Context, port string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	defer a.Log.Sync()

	if err := a.EnsureIndexes(ctx); err != nil {
		return err
	}

	addr := a.Config.Addr()
	if port != "" {
		addr = ":" + port
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: a.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("server starting", zap.String("addr", addr), zap.String("env", a.Config.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("server stopped", zap.Error(err))
		return err
	}
	a.Log.Info("server exited")
	return nil
}
