package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blumie/wellcheck/internal/assessment"
	"github.com/blumie/wellcheck/internal/llm"
	"github.com/blumie/wellcheck/internal/quiz"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run one risk assessment and print the verdict",
	Long: `Run the assessment pipeline once, outside the server.

The answers file is a JSON object keyed answer1..answer10; pass "-" to
read it from stdin. When the verdict asks for a caretaker alert the
command waits for the alert to finish before exiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		mood, _ := cmd.Flags().GetString("mood")
		answersPath, _ := cmd.Flags().GetString("answers")
		prior, _ := cmd.Flags().GetBool("prior-alerted")

		answers, err := readAnswers(cmd.InOrStdin(), answersPath)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		provider, err := llm.NewProviderFromEnv(ctx, s.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		svc := assessment.NewService(provider, provideAlerter(s.EventRepo(), logger), assessment.ConfigFromEnv(), logger)
		defer svc.Wait()

		verdict, err := svc.Assess(ctx, assessment.Input{
			StudentName:  student,
			Mood:         mood,
			Answers:      answers,
			PriorAlerted: prior,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	},
}

func readAnswers(stdin io.Reader, path string) (quiz.AnswerSet, error) {
	var answers quiz.AnswerSet
	if path == "" {
		return answers, fmt.Errorf("--answers is required")
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return answers, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&answers); err != nil {
		return answers, fmt.Errorf("read answers: %w", err)
	}
	return answers, nil
}

func init() {
	assessCmd.Flags().String("student", "", "Student display name")
	assessCmd.Flags().String("mood", "", "Mood description")
	assessCmd.Flags().String("answers", "", "JSON file with answer1..answer10, or - for stdin")
	assessCmd.Flags().Bool("prior-alerted", false, "Treat the student as already alerted for this check-in")
}
