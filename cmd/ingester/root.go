package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"job_fetcher/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "ingester",
	Short:         "Job posting ingestion pipeline",
	Long:          "Scrapes job sources for saved searches, stores postings not seen before and queues notifications for their owners.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
}

// loadConfig reads the config file and builds the logger. A missing default
// config file falls back to built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, setupLogger(cfg.LogLevel), nil
}
