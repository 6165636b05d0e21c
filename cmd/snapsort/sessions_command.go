package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"snapsort/internal/config"
	"snapsort/internal/journal"
	"snapsort/internal/session"
)

func newSessionsCommand(configFlag *string) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Show journaled session attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := journal.Open(cfg, "cli")
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("read stats: %w", err)
			}
			attempts, err := store.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list attempts: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sessions: %d total, %d done, %d failed, %d in flight\n",
				stats.Total, stats.Done, stats.Failed, stats.InFlight)

			rows := make([][]string, 0, len(attempts))
			for _, a := range attempts {
				if failedOnly && a.Status != session.StatusError {
					continue
				}
				detail := ""
				if a.Status == session.StatusError {
					detail = a.ErrorContext
					if a.ErrorKind != "" {
						detail = fmt.Sprintf("%s (%s)", a.ErrorContext, a.ErrorKind)
					}
				}
				rows = append(rows, []string{
					a.SessionID,
					a.SubjectID,
					colorizeStatus(a.Status),
					strconv.Itoa(a.MemberCount),
					strconv.Itoa(a.MovedCount),
					detail,
					a.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No matching session attempts.")
				return nil
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Session", "Subject", "Status", "Photos", "Moved", "Detail", "Updated"},
				rows, 4, 5,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum attempts to show (0 for all)")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed attempts")
	return cmd
}
