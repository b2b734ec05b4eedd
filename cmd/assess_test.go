package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAnswersFromStdin(t *testing.T) {
	in := strings.NewReader(`{"answer1":"yes","answer10":"no","extra":"ignored"}`)
	answers, err := readAnswers(in, "-")
	if err != nil {
		t.Fatalf("readAnswers: %v", err)
	}
	if answers[0] != "yes" || answers[9] != "no" {
		t.Errorf("answers = %v", answers)
	}
	if got := answers.Missing(); len(got) != 8 {
		t.Errorf("missing = %v, want 8 blanks", got)
	}
}

func TestReadAnswersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte(`{"answer5":"sometimes"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	answers, err := readAnswers(strings.NewReader(""), path)
	if err != nil {
		t.Fatalf("readAnswers: %v", err)
	}
	if answers[4] != "sometimes" {
		t.Errorf("answer5 = %q", answers[4])
	}
}

func TestReadAnswersErrors(t *testing.T) {
	if _, err := readAnswers(strings.NewReader(""), ""); err == nil {
		t.Error("expected error without a path")
	}
	if _, err := readAnswers(strings.NewReader("[1,2]"), "-"); err == nil {
		t.Error("expected error for a non-object body")
	}
	if _, err := readAnswers(nil, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFormatCost(t *testing.T) {
	if got := formatCost(0.001); got != "$0.0010" {
		t.Errorf("formatCost(0.001) = %q", got)
	}
	if got := formatCost(1.5); got != "$1.50" {
		t.Errorf("formatCost(1.5) = %q", got)
	}
}
