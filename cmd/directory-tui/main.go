package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydir/internal/directory/app"
	"github.com/gartstein/companydir/internal/directory/config"
	"github.com/gartstein/companydir/internal/directory/tui"
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
	var (
		configPath string
		logFile    string
	)
	cmd := &cobra.Command{
		Use:   "directory-tui",
		Short: "Browse the company directory in the terminal",
		Example: `  # Browse the shipped mock collection
  directory-tui

  # Simulate a failing source and keep a debug log
  DIRECTORY_FETCH_FAIL=true directory-tui --log-file /tmp/directory.log`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, logFile)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (the terminal is owned by the UI)")
	return cmd
}

func run(ctx context.Context, configPath, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if logFile != "" {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{logFile}
		zcfg.ErrorOutputPaths = []string{logFile}
		if logger, err = zcfg.Build(); err != nil {
			return err
		}
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	model := tui.New(ctx, rt.Directory)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		logger.Error("terminal UI failed", zap.Error(err))
		return err
	}
	return nil
}
