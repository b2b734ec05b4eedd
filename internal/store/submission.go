package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/blumie/wellcheck/internal/quiz"
)

var submissionColumns = []string{
	"id", "student_id", "mood_text", "mood_color", "color_r", "color_g", "color_b",
	"status", "truthfulness", "reasoning", "recommendation", "alert_caretaker",
	"alerted", "summary", "answers", "failure", "submitted_at", "updated_at",
}

// submissionRepo implements SubmissionRepo with ent's SQL builders.
type submissionRepo struct {
	db *sql.DB
}

func (r *submissionRepo) Create(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = sub.SubmittedAt
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	if sub.Truthfulness == "" {
		sub.Truthfulness = TruthProcessing
	}

	answers, err := encodeAnswers(sub.Answers)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSubmissions).
		Columns(submissionColumns...).
		Values(
			sub.ID, sub.StudentID, sub.MoodText, sub.MoodColor, sub.R, sub.G, sub.B,
			sub.Status, sub.Truthfulness, sub.Reasoning, sub.Recommendation, sub.AlertCaretaker,
			sub.Alerted, sub.Summary, answers, sub.Failure, sub.SubmittedAt, sub.UpdatedAt,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

func (r *submissionRepo) Get(ctx context.Context, id string) (*Submission, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(submissionColumns...).
		From(entsql.Table(tableSubmissions)).
		Where(entsql.EQ("id", id)).
		Query()

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query submission: %w", err)
	}
	return sub, nil
}

func (r *submissionRepo) List(ctx context.Context, limit int) ([]Submission, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(submissionColumns...).
		From(entsql.Table(tableSubmissions)).
		OrderBy(entsql.Desc("submitted_at"), entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.query(ctx, query, args)
}

func (r *submissionRepo) SetAnswers(ctx context.Context, id string, answers quiz.AnswerSet) (*Submission, error) {
	encoded, err := encodeAnswers(&answers)
	if err != nil {
		return nil, err
	}
	return r.claim(ctx, id, entsql.Dialect(dialect.SQLite).
		Update(tableSubmissions).
		Set("answers", encoded).
		Set("status", StatusPending).
		Set("truthfulness", TruthProcessing).
		Set("failure", "").
		Where(notInFlight()))
}

func (r *submissionRepo) BeginReassessment(ctx context.Context, id string) (*Submission, error) {
	return r.claim(ctx, id, entsql.Dialect(dialect.SQLite).
		Update(tableSubmissions).
		Set("status", StatusPending).
		Set("truthfulness", TruthProcessing).
		Set("failure", "").
		Where(entsql.NEQ("answers", "")).
		Where(notInFlight()))
}

// notInFlight matches rows without an assessment underway: anything not
// pending, or pending without answers yet.
func notInFlight() *entsql.Predicate {
	return entsql.Or(
		entsql.NEQ("status", StatusPending),
		entsql.EQ("answers", ""),
	)
}

// claim applies a conditional update. When the row exists but the
// condition did not hold it reports ErrInFlight.
func (r *submissionRepo) claim(ctx context.Context, id string, u *entsql.UpdateBuilder) (*Submission, error) {
	sub, err := r.update(ctx, id, u)
	if !errors.Is(err, ErrNotFound) {
		return sub, err
	}
	if _, gerr := r.Get(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, ErrInFlight
}

func (r *submissionRepo) SetSummary(ctx context.Context, id, summary string) (*Submission, error) {
	return r.update(ctx, id, entsql.Dialect(dialect.SQLite).
		Update(tableSubmissions).
		Set("summary", summary))
}

func (r *submissionRepo) ApplyVerdict(ctx context.Context, id string, v VerdictData) (*Submission, error) {
	u := entsql.Dialect(dialect.SQLite).
		Update(tableSubmissions).
		Set("status", StatusComplete).
		Set("truthfulness", v.Truthfulness).
		Set("reasoning", v.Reasoning).
		Set("recommendation", v.Recommendation).
		Set("alert_caretaker", v.AlertCaretaker).
		Set("failure", "")
	if v.AlertCaretaker {
		u = u.Set("alerted", true)
	}
	return r.update(ctx, id, u)
}

func (r *submissionRepo) MarkFailed(ctx context.Context, id, reason string) (*Submission, error) {
	return r.update(ctx, id, failedUpdate(reason))
}

func (r *submissionRepo) FailStale(ctx context.Context, cutoff time.Time, reason string) ([]Submission, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(submissionColumns...).
		From(entsql.Table(tableSubmissions)).
		Where(entsql.And(
			entsql.EQ("status", StatusPending),
			entsql.NEQ("answers", ""),
			entsql.LT("updated_at", cutoff.UTC()),
		)).
		Query()
	stale, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	failed := make([]Submission, 0, len(stale))
	for _, s := range stale {
		sub, err := r.update(ctx, s.ID, failedUpdate(reason).Where(entsql.EQ("status", StatusPending)))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return failed, err
		}
		failed = append(failed, *sub)
	}
	return failed, nil
}

func failedUpdate(reason string) *entsql.UpdateBuilder {
	return entsql.Dialect(dialect.SQLite).
		Update(tableSubmissions).
		Set("status", StatusFailed).
		Set("truthfulness", TruthError).
		Set("failure", reason)
}

// update stamps updated_at, applies u to row id and returns the result.
// It reports ErrNotFound when no row matched.
func (r *submissionRepo) update(ctx context.Context, id string, u *entsql.UpdateBuilder) (*Submission, error) {
	query, args := u.
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update submission %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *submissionRepo) query(ctx context.Context, query string, args []any) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		s       Submission
		answers string
	)
	err := row.Scan(
		&s.ID, &s.StudentID, &s.MoodText, &s.MoodColor, &s.R, &s.G, &s.B,
		&s.Status, &s.Truthfulness, &s.Reasoning, &s.Recommendation, &s.AlertCaretaker,
		&s.Alerted, &s.Summary, &answers, &s.Failure, &s.SubmittedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if answers != "" {
		var a quiz.AnswerSet
		if err := json.Unmarshal([]byte(answers), &a); err != nil {
			return nil, fmt.Errorf("decode answers of %s: %w", s.ID, err)
		}
		s.Answers = &a
	}
	return &s, nil
}

func encodeAnswers(a *quiz.AnswerSet) (string, error) {
	if a == nil {
		return "", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return string(b), nil
}
