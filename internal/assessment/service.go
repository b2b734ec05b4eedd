// Package assessment turns a mood entry and its quiz answers into a risk
// verdict by asking a reasoning service, and hands flagged verdicts to an
// alerter without waiting on it.
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blumie/wellcheck/internal/llm"
	"github.com/blumie/wellcheck/internal/quiz"
)

// PurposeAssessment labels assessment calls in the LLM audit log.
const PurposeAssessment = "risk-assessment"

// Alerter delivers a caretaker alert for a student. Implementations must
// not panic and report their own failures; Notify returns nothing.
type Alerter interface {
	Notify(ctx context.Context, studentName string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(ctx context.Context, studentName string)

func (f AlerterFunc) Notify(ctx context.Context, studentName string) { f(ctx, studentName) }

// Input is one assessment request.
type Input struct {
	StudentName string         `json:"studentName" validate:"required,notblank"`
	Mood        string         `json:"mood" validate:"required,notblank"`
	Answers     quiz.AnswerSet `json:"answers"`

	// PriorAlerted is set by callers re-assessing a submission that has
	// already fired an alert. A flagged verdict then does not alert again.
	PriorAlerted bool `json:"priorAlerted"`
}

// Verdict is the reasoning service's judgement of one mood entry.
type Verdict struct {
	Truthfulness   string `json:"truthfulness"`
	Reasoning      string `json:"reasoning"`
	AlertCaretaker bool   `json:"alertCaretaker"`
	Recommendation string `json:"recommendation"`
}

// Service runs the risk-assessment pipeline. It holds no state between
// calls other than the set of in-flight alert goroutines.
type Service struct {
	provider llm.Provider
	alerter  Alerter
	cfg      Config
	logger   zerolog.Logger

	wg sync.WaitGroup
}

// NewService creates a Service. provider should not retry: each Assess
// makes exactly one call. alerter may be nil, in which case flagged
// verdicts are only logged.
func NewService(provider llm.Provider, alerter Alerter, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Service{
		provider: provider,
		alerter:  alerter,
		cfg:      cfg,
		logger:   logger.With().Str("component", "assessment").Logger(),
	}
}

// Assess validates in, asks the reasoning service for a verdict and
// returns it. A verdict with AlertCaretaker set (and no prior alert)
// starts the alerter on a detached goroutine; Assess does not wait for
// it. Errors are *ValidationError or *AssessmentError.
func (s *Service) Assess(ctx context.Context, in Input) (*Verdict, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	userMsg, err := buildAssessmentMessage(in)
	if err != nil {
		return nil, &AssessmentError{Student: in.StudentName, Err: fmt.Errorf("build prompt: %w", err)}
	}

	callCtx, cancel := context.WithTimeout(llm.WithPurpose(ctx, PurposeAssessment), s.cfg.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(callCtx, llm.Request{
		System: assessmentSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      VerdictSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, &AssessmentError{Student: in.StudentName, Err: err}
	}

	verdict, err := decodeVerdict(resp.Content)
	if err != nil {
		return nil, &AssessmentError{Student: in.StudentName, Err: err}
	}

	s.logger.Info().
		Str("student", in.StudentName).
		Str("truthfulness", verdict.Truthfulness).
		Bool("alert_caretaker", verdict.AlertCaretaker).
		Msg("assessment complete")

	if verdict.AlertCaretaker {
		if in.PriorAlerted {
			s.logger.Info().Str("student", in.StudentName).Msg("already alerted for this submission, not alerting again")
		} else {
			s.dispatch(ctx, in.StudentName)
		}
	}

	return verdict, nil
}

// Wait blocks until every alert started by Assess has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) dispatch(ctx context.Context, student string) {
	if s.alerter == nil {
		s.logger.Warn().Str("student", student).Msg("verdict flagged for a caretaker but no alerter is configured")
		return
	}

	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Str("student", student).Interface("panic", r).Msg("alert dispatch panicked")
			}
		}()
		s.alerter.Notify(detached, student)
	}()
}

// decodeVerdict checks raw against VerdictSchema and decodes it. The
// provider is not trusted to have validated the reply itself.
func decodeVerdict(raw json.RawMessage) (*Verdict, error) {
	raw = normalizeTruthfulness(raw)
	if err := llm.Validate(VerdictSchema, raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var v Verdict
	if err := dec.Decode(&v); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode verdict: %w", err)}
	}

	if strings.TrimSpace(v.Reasoning) == "" {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: errors.New("blank reasoning")}
	}
	if strings.TrimSpace(v.Recommendation) == "" {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: errors.New("blank recommendation")}
	}
	return &v, nil
}

// normalizeTruthfulness rewrites label spellings listed in
// truthfulnessAliases to their canonical form. Anything it cannot parse
// is returned unchanged for validation to reject.
func normalizeTruthfulness(raw json.RawMessage) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}
	var label string
	if err := json.Unmarshal(fields["truthfulness"], &label); err != nil {
		return raw
	}
	canonical, ok := truthfulnessAliases[label]
	if !ok {
		return raw
	}
	fields["truthfulness"], _ = json.Marshal(canonical)
	out, err := json.Marshal(fields)
	if err != nil {
		return raw
	}
	return out
}
