package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blumie/wellcheck/internal/store"
	"github.com/blumie/wellcheck/internal/ui/theme"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and test caretaker alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent alert attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.EventRepo().QueryAlerts(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query alerts: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println(theme.Hint.Render("No alerts recorded."))
			return nil
		}

		fmt.Println(theme.Title.Render(fmt.Sprintf("%-5s  %-19s  %-16s  %-16s  %-8s  %s",
			"ID", "Timestamp", "Student", "Recipient", "Outcome", "Detail")))
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range recs {
			detail := r.MessageID
			if r.ErrorMessage != "" {
				detail = r.ErrorMessage
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-16s  %s  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(r.Student, 16),
				truncate(r.Recipient, 16),
				theme.Outcome(fmt.Sprintf("%-8s", r.Outcome)),
				detail,
			)
		}
		return nil
	},
}

var alertsTestCmd = &cobra.Command{
	Use:   "test <student>",
	Short: "Send one alert through the configured notification channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events := s.EventRepo()
		provideAlerter(events, logger).Notify(cmd.Context(), args[0])

		recs, err := events.QueryAlerts(cmd.Context(), store.QueryOpts{Limit: 1})
		if err != nil {
			return fmt.Errorf("query alerts: %w", err)
		}
		if len(recs) == 0 {
			return fmt.Errorf("no alert was recorded")
		}
		r := recs[0]
		fmt.Printf("%s %s\n", theme.Outcome(r.Outcome), r.Recipient)
		if r.ErrorMessage != "" {
			return fmt.Errorf("alert %s: %s", r.Outcome, r.ErrorMessage)
		}
		return nil
	},
}

func init() {
	alertsListCmd.Flags().IntP("limit", "n", 20, "Number of alerts to show")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsTestCmd)
}
