package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/dedup"
	"marquee/internal/monitor"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var notify bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single poll cycle and print the result",
		Long: "Run one poll cycle against the configured endpoints. Notifications are\n" +
			"suppressed unless --notify is given; voice escalation never runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger()
			if err != nil {
				return err
			}
			mon := monitor.FromConfig(cfg, logger,
				monitor.WithDeduplicator(dedup.New()),
				monitor.WithDryRun(!notify),
				monitor.WithEscalation(false),
			)
			out := mon.RunCycle(cmd.Context())
			w := cmd.OutOrStdout()
			printOutcome(w, out, shouldColorize(w))
			return out.Err
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Deliver the match notification")
	return cmd
}

func printOutcome(w io.Writer, out monitor.Outcome, colorize bool) {
	for _, line := range renderSectionHeader("Cycle "+shortCycleID(out.CycleID), colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, renderStatusLine("Rule", statusInfo, out.Rule.String(), colorize))
	fmt.Fprintln(w, renderStatusLine("State", outcomeKind(out), string(out.State), colorize))

	path := make([]string, 0, len(out.Path))
	for _, s := range out.Path {
		path = append(path, string(s))
	}
	fmt.Fprintln(w, renderStatusLine("Path", statusInfo, strings.Join(path, " > "), colorize))
	if out.Reason != "" {
		fmt.Fprintln(w, renderStatusLine("Reason", statusInfo, out.Reason, colorize))
	}
	if out.Err != nil {
		fmt.Fprintln(w, renderStatusLine("Error", statusError, out.Err.Error(), colorize))
	}
	for _, fm := range out.FilmMatches {
		fmt.Fprintln(w, renderStatusLine("Film set "+fm.Label(), statusSuccess, strings.Join(fm.Names, ", "), colorize))
	}
	for _, lookup := range out.Lookups {
		kind, msg := statusInfo, fmt.Sprintf("%s (%s), %d theatres", lookup.Date, lookup.DateSource, lookup.Found)
		if lookup.Err != nil {
			kind, msg = statusWarn, lookup.Err.Error()
		}
		fmt.Fprintln(w, renderStatusLine("Lookup "+lookup.Code, kind, msg, colorize))
	}
	if out.Matched() && out.Rule == monitor.RuleKeywords {
		theatres := "all"
		if !out.Cinema.All {
			names := make([]string, 0, len(out.Cinema.Theatres))
			for _, th := range out.Cinema.Theatres {
				names = append(names, th.Name)
			}
			theatres = strings.Join(names, ", ")
		}
		fmt.Fprintln(w, renderStatusLine("Theatres", statusInfo, theatres, colorize))
	}
	if out.MatchKey != "" {
		fmt.Fprintln(w, renderStatusLine("Match key", statusInfo, out.MatchKey, colorize))
	}
	if out.Matched() {
		notified := "suppressed (dry run)"
		kind := statusWarn
		switch {
		case out.Notified:
			notified, kind = "sent", statusSuccess
		case out.NotifyErr != nil:
			notified, kind = "failed: "+out.NotifyErr.Error(), statusError
		}
		fmt.Fprintln(w, renderStatusLine("Notification", kind, notified, colorize))
	}
}

func outcomeKind(out monitor.Outcome) statusKind {
	switch {
	case out.Err != nil:
		return statusError
	case out.Matched():
		return statusSuccess
	case out.State == monitor.StateSkipped:
		return statusWarn
	default:
		return statusInfo
	}
}

func shortCycleID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
