package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blumie/wellcheck/internal/quiz"
	"github.com/blumie/wellcheck/internal/ui/theme"
)

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Aliases: []string{"subs"},
	Short:   "Inspect mood check-ins and their verdicts",
}

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		subs, err := s.SubmissionRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list submissions: %w", err)
		}
		if len(subs) == 0 {
			fmt.Println(theme.Hint.Render("No submissions yet."))
			return nil
		}

		fmt.Println(theme.Title.Render(fmt.Sprintf("%-36s  %-16s  %-8s  %-24s  %s",
			"ID", "Student", "Status", "Truthfulness", "Alert")))
		fmt.Println(strings.Repeat("─", 100))
		for _, sub := range subs {
			alert := ""
			if sub.AlertCaretaker {
				alert = theme.Flagged.Render("yes")
			}
			fmt.Printf("%-36s  %-16s  %s  %-24s  %s %s\n",
				sub.ID,
				truncate(sub.StudentID, 16),
				theme.Status(fmt.Sprintf("%-8s", sub.Status)),
				truncate(sub.Truthfulness, 24),
				theme.Swatch(sub.MoodColor),
				alert,
			)
		}
		return nil
	},
}

var submissionsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one submission with its answers and verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sub, err := s.SubmissionRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get submission %s: %w", args[0], err)
		}

		var b strings.Builder
		row := func(label, value string) {
			b.WriteString(theme.Label.Render(label) + theme.Body.Render(value) + "\n")
		}
		row("Student", sub.StudentID)
		row("Submitted", sub.SubmittedAt.Local().Format("2006-01-02 15:04:05"))
		row("Mood", sub.MoodText)
		row("Colour", theme.Swatch(sub.MoodColor)+" "+sub.MoodColor)
		if sub.Summary != "" {
			row("Summary", sub.Summary)
		}
		b.WriteString(theme.Label.Render("Status") + theme.Status(sub.Status) + "\n")
		if sub.Failure != "" {
			row("Failure", sub.Failure)
		}
		row("Truthfulness", sub.Truthfulness)
		row("Reasoning", sub.Reasoning)
		row("Recommendation", sub.Recommendation)
		alert := "no"
		if sub.AlertCaretaker {
			alert = theme.Flagged.Render("yes")
		}
		if sub.Alerted {
			alert += " (caretaker notified)"
		}
		row("Alert", alert)

		fmt.Println(theme.Title.Render("Submission " + sub.ID))
		fmt.Println(theme.Card.Render(strings.TrimRight(b.String(), "\n")))

		if sub.Answers != nil {
			fmt.Println()
			fmt.Println(theme.Title.Render("Answers"))
			for i, q := range quiz.Bank {
				fmt.Printf("%2d. %s\n    %s\n", q.Number, theme.Hint.Render(q.Text), sub.Answers[i])
			}
		}
		return nil
	},
}

func init() {
	submissionsListCmd.Flags().IntP("limit", "n", 20, "Number of submissions to show")

	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsViewCmd)
}
