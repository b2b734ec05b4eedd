package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blumie/wellcheck/internal/llm"
)

// PurposeMoodSummary labels analyzer calls in the LLM audit log.
const PurposeMoodSummary = "mood-summary"

// Analyzer produces a one-sentence observation of a mood description.
// Its output is informational and never drives alerts.
type Analyzer struct {
	provider llm.Provider
	cfg      Config
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(provider llm.Provider, cfg Config) *Analyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Analyzer{provider: provider, cfg: cfg}
}

type summaryOutput struct {
	Summary string `json:"summary"`
}

// Summarize returns the observation for mood.
func (a *Analyzer) Summarize(ctx context.Context, mood string) (string, error) {
	if strings.TrimSpace(mood) == "" {
		return "", &ValidationError{Problems: []string{"mood is required"}}
	}

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, PurposeMoodSummary), a.cfg.Timeout)
	defer cancel()

	resp, err := a.provider.Generate(ctx, llm.Request{
		System: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Student's mood: " + mood},
		},
		Schema:      SummarySchema,
		MaxTokens:   128,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("mood summary failed: %w", err)
	}

	var out summaryOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("failed to parse mood summary: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", errors.New("mood summary is blank")
	}
	return strings.TrimSpace(out.Summary), nil
}
