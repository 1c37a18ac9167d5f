package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded poll cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Journal.Enabled {
				fmt.Fprintln(out, "Cycle journal disabled (journal.enabled = false)")
				return nil
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No cycles recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of cycles to show")
	return cmd
}

func renderHistory(entries []journal.Entry) string {
	headers := []string{"Started", "State", "Rule", "Films", "Match Key", "Notified", "Called", "Duration"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state := e.State
		if e.Error != "" {
			state += " (error)"
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			state,
			e.Rule,
			strings.Join(e.Films, ", "),
			e.MatchKey,
			yesNo(e.Notified),
			yesNo(e.Escalated),
			strconv.FormatInt(e.Duration.Round(time.Millisecond).Milliseconds(), 10) + "ms",
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	return renderTable(headers, rows, aligns)
}
