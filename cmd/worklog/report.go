package main

import (
	"fmt"
	"os"

	"github.com/rpggio/worklog/internal/commands"
	"github.com/rpggio/worklog/internal/notify"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reclaim overdue sessions once and print them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			reclaimed, err := a.reclaimer.Sweep(cmd.Context())
			out := cmd.OutOrStdout()
			for _, n := range reclaimed {
				fmt.Fprintf(out, "%s\t%s\n", n.UserID, notify.Message(n))
			}
			if len(reclaimed) == 0 && err == nil {
				fmt.Fprintln(out, "No overdue sessions.")
			}
			return err
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's recent closed sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.reports.History(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No past sessions for %s.\n", userID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), commands.FormatHistory(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum sessions (default from config)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var (
		userID string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total a user's hours over the trailing days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if days <= 0 {
				days = a.reports.Defaults().SummaryDays
			}
			total, err := a.reports.Summary(cmd.Context(), userID, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s worked %.2f h in the last %d days.\n", userID, total, days)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&days, "days", 0, "window in days (default from config)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", a.cfg.DB.Path)
			return nil
		},
	}
}
