package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nexus/internal/logging"
	"nexus/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var runID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var filter logs.Filter
			if runID != "" {
				filter = logs.MatchField(logging.FieldRunID, runID)
			}
			entries, err := logs.Tail(cfg.LogPath(), lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No log entries in %s\n", cfg.LogPath())
				return nil
			}
			for _, line := range entries {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this run ID")
	return cmd
}
