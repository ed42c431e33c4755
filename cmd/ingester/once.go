package main

import (
	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single re-run cycle and print its statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.scheduler.RunCycle(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd, stats)
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
