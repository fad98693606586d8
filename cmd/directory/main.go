package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gartstein/companydir/internal/directory/app"
	"github.com/gartstein/companydir/internal/directory/config"
	"github.com/gartstein/companydir/internal/directory/controller"
	"github.com/gartstein/companydir/internal/directory/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var defaultConfigPath = filepath.Join("internal", "directory", "config", "config.yaml")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Serve the company directory",
		Long: `Serves the company directory page and its JSON API over HTTP, and a gRPC
health service that reports SERVING once the collection is loaded.

Settings come from the YAML file given by --config and can be overridden with
DIRECTORY_* environment variables, e.g. DIRECTORY_HTTP_PORT=9090.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)

	rt, err := app.Build(ctx, cfg, logger, controller.WithStatusObserver(server.ObserveStatus))
	if err != nil {
		logger.Error("failed to build directory", zap.Error(err))
		return err
	}
	defer rt.Close()

	handler, err := handlers.NewDirectoryHandler(ctx, rt.Directory, handlers.HTTPConfig{
		PageSize:        cfg.PageSize,
		ReloadPerMinute: cfg.ReloadPerMinute,
		Production:      cfg.Production,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP handler: %w", err)
	}
	server.RegisterHTTPHandler(handler.Routes())

	if err := rt.Directory.Load(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
	return err
}
