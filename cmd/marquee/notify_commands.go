package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/notifications"
	"marquee/internal/voice"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "ntfy topic not configured")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				fmt.Fprintln(out, "Failed to send notification")
				return err
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}

func newTestCallCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-call",
		Short: "Place a test escalation call",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			caller := voice.New(cfg)
			if !caller.Enabled() {
				fmt.Fprintln(out, "Voice escalation not enabled")
				return nil
			}
			sid, err := caller.Call(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, "Failed to place call")
				return err
			}
			fmt.Fprintf(out, "Call placed: %s\n", sid)
			return nil
		},
	}
}
