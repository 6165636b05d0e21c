package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"snapsort/internal/config"
	"snapsort/internal/daemonrun"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the folder monitor daemon",
		Long: "Watch the configured folder for incoming photos, detect QR trigger " +
			"photos, and commit the preceding photos into dated subject folders.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:  logLevel,
				LogFormat: logFormat,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "Override the configured log format (console, json)")
	return cmd
}
