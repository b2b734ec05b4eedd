// Package checkin drives a check-in from mood capture to verdict. Each
// submission is a staging record whose status moves from pending to
// complete or failed while assessments run in the background.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blumie/wellcheck/internal/assessment"
	"github.com/blumie/wellcheck/internal/quiz"
	"github.com/blumie/wellcheck/internal/session"
	"github.com/blumie/wellcheck/internal/store"
)

var (
	ErrNotFound  = errors.New("submission not found")
	ErrForbidden = errors.New("submission belongs to another student")
	ErrNoAnswers = errors.New("submission has no quiz answers")

	// ErrInProgress is returned while a submission is being assessed.
	ErrInProgress = errors.New("submission is already being assessed")
)

// StaleReason is the failure text of a swept submission.
const StaleReason = "assessment did not complete"

// Assessor produces verdicts. *assessment.Service satisfies it.
type Assessor interface {
	Assess(ctx context.Context, in assessment.Input) (*assessment.Verdict, error)
}

// Summarizer produces mood summaries. *assessment.Analyzer satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, mood string) (string, error)
}

// Publisher receives every state change of a submission.
type Publisher interface {
	Publish(sub store.Submission)
}

// Config tunes the capture flow.
type Config struct {
	// StaleAfter is how long a pending submission with answers may go
	// without an update before SweepStale fails it. Default: 10m.
	StaleAfter time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{StaleAfter: 10 * time.Minute}
}

// MoodInput is what a student submits first.
type MoodInput struct {
	Mood  string `json:"mood"`
	Color string `json:"color"`
}

// Service runs check-ins.
type Service struct {
	repo       store.SubmissionRepo
	assessor   Assessor
	summarizer Summarizer
	publisher  Publisher
	cfg        Config
	logger     zerolog.Logger
	now        func() time.Time

	wg sync.WaitGroup
}

// New creates a Service. summarizer and publisher may be nil.
func New(repo store.SubmissionRepo, assessor Assessor, summarizer Summarizer, publisher Publisher, cfg Config, logger zerolog.Logger) *Service {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultConfig().StaleAfter
	}
	return &Service{
		repo:       repo,
		assessor:   assessor,
		summarizer: summarizer,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With().Str("component", "checkin").Logger(),
		now:        time.Now,
	}
}

// SubmitMood records a new pending submission for sess. A summary of the
// mood is requested in the background and patched in when it arrives.
func (s *Service) SubmitMood(ctx context.Context, sess session.Session, in MoodInput) (*store.Submission, error) {
	var problems []string
	if strings.TrimSpace(sess.Name) == "" {
		problems = append(problems, "studentName is required")
	}
	if strings.TrimSpace(in.Mood) == "" {
		problems = append(problems, "mood is required")
	}
	color, err := LookupColor(in.Color)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, &assessment.ValidationError{Problems: problems}
	}

	sub := &store.Submission{
		StudentID: sess.Name,
		MoodText:  strings.TrimSpace(in.Mood),
		MoodColor: color.Hex,
		R:         color.R,
		G:         color.G,
		B:         color.B,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	log := s.logger.With().Str("submission", sub.ID).Str("student", sub.StudentID).Logger()
	log.Info().Msg("mood submitted")
	if Concerning(sub.MoodText) {
		log.Warn().Str("mood", sub.MoodText).Msg("potentially concerning mood detected")
	}
	s.publish(sub)

	if s.summarizer != nil {
		s.background(ctx, func(ctx context.Context) {
			summary, err := s.summarizer.Summarize(ctx, sub.MoodText)
			if err != nil {
				log.Warn().Err(err).Msg("mood summary failed")
				return
			}
			updated, err := s.repo.SetSummary(ctx, sub.ID, summary)
			if err != nil {
				log.Warn().Err(err).Msg("failed to store mood summary")
				return
			}
			s.publish(updated)
		})
	}

	return sub, nil
}

// SubmitAnswers stores the quiz answers of submission id and starts the
// assessment in the background. It returns the pending submission.
func (s *Service) SubmitAnswers(ctx context.Context, sess session.Session, id string, answers quiz.AnswerSet) (*store.Submission, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.StudentID != sess.Name {
		return nil, ErrForbidden
	}

	err = assessment.Validate(assessment.Input{
		StudentName: sub.StudentID,
		Mood:        sub.MoodText,
		Answers:     answers,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetAnswers(ctx, id, answers)
	if errors.Is(err, store.ErrInFlight) {
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("store answers: %w", err)
	}
	s.publish(updated)

	s.background(ctx, func(ctx context.Context) {
		// Failures are recorded on the submission and logged there.
		_, _ = s.assess(ctx, updated)
	})

	return updated, nil
}

// Reassess runs the assessment of submission id again and waits for it.
// A submission that already alerted does not alert a second time, and one
// still being assessed is refused with ErrInProgress.
func (s *Service) Reassess(ctx context.Context, id string) (*store.Submission, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Answers == nil {
		return nil, ErrNoAnswers
	}

	claimed, err := s.repo.BeginReassessment(ctx, id)
	if errors.Is(err, store.ErrInFlight) {
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("begin reassessment: %w", err)
	}
	s.publish(claimed)
	return s.assess(ctx, claimed)
}

// SweepStale fails pending submissions whose assessment has been silent
// for longer than StaleAfter, such as those orphaned by a restart.
func (s *Service) SweepStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.StaleAfter)
	swept, err := s.repo.FailStale(ctx, cutoff, StaleReason)
	for i := range swept {
		s.logger.Warn().Str("submission", swept[i].ID).Msg("stale assessment marked failed")
		s.publish(&swept[i])
	}
	if err != nil {
		return len(swept), fmt.Errorf("sweep stale submissions: %w", err)
	}
	return len(swept), nil
}

// Wait blocks until background work started by this Service is done.
func (s *Service) Wait() {
	s.wg.Wait()
}

// assess runs the pipeline for sub and records the outcome. On failure
// the returned submission carries the Error sentinel alongside err.
func (s *Service) assess(ctx context.Context, sub *store.Submission) (*store.Submission, error) {
	log := s.logger.With().Str("submission", sub.ID).Str("student", sub.StudentID).Logger()

	verdict, err := s.assessor.Assess(ctx, assessment.Input{
		StudentName:  sub.StudentID,
		Mood:         sub.MoodText,
		Answers:      *sub.Answers,
		PriorAlerted: sub.Alerted,
	})
	if err != nil {
		log.Error().Err(err).Msg("assessment failed")
		failed, merr := s.repo.MarkFailed(ctx, sub.ID, err.Error())
		if merr != nil {
			log.Error().Err(merr).Msg("failed to record assessment failure")
			return nil, err
		}
		s.publish(failed)
		return failed, err
	}

	updated, err := s.repo.ApplyVerdict(ctx, sub.ID, store.VerdictData{
		Truthfulness:   verdict.Truthfulness,
		Reasoning:      verdict.Reasoning,
		Recommendation: verdict.Recommendation,
		AlertCaretaker: verdict.AlertCaretaker,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to store verdict")
		return nil, fmt.Errorf("store verdict: %w", err)
	}
	s.publish(updated)
	return updated, nil
}

func (s *Service) get(ctx context.Context, id string) (*store.Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	return sub, nil
}

// background runs fn on its own goroutine with a context that outlives
// the request that started it.
func (s *Service) background(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Msg("background check-in work panicked")
			}
		}()
		fn(detached)
	}()
}

func (s *Service) publish(sub *store.Submission) {
	if s.publisher == nil || sub == nil {
		return
	}
	s.publisher.Publish(*sub)
}
