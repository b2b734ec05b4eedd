package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blumie/wellcheck/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func answers() quiz.AnswerSet {
	var a quiz.AnswerSet
	for i := range a {
		a[i] = fmt.Sprintf("answer %d", i+1)
	}
	return a
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableSubmissions, tableLLMEvents, tableAlertEvents, tableSequence} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A second counter over the same table must not reseed it.
	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestSubmissionCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	sub := &Submission{StudentID: "Priya", MoodText: "calm", MoodColor: "#0000FF", B: 255}
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.ID == "" {
		t.Fatal("expected an assigned ID")
	}

	got, err := repo.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StudentID != "Priya" || got.MoodText != "calm" || got.B != 255 {
		t.Errorf("unexpected submission: %+v", got)
	}
	if got.Status != StatusPending || got.Truthfulness != TruthProcessing {
		t.Errorf("status = %q/%q, want pending/Processing...", got.Status, got.Truthfulness)
	}
	if got.Answers != nil {
		t.Error("expected no answers yet")
	}
	if got.SubmittedAt.IsZero() {
		t.Error("expected submitted_at to round-trip")
	}
}

func TestSubmissionGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SubmissionRepo().Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmissionListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := repo.Create(ctx, &Submission{
			StudentID:   "s",
			MoodText:    fmt.Sprintf("mood %d", i),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	subs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d submissions, want 2", len(subs))
	}
	if subs[0].MoodText != "mood 2" || subs[1].MoodText != "mood 1" {
		t.Errorf("unexpected order: %q, %q", subs[0].MoodText, subs[1].MoodText)
	}
}

func TestSubmissionVerdictLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	sub := &Submission{StudentID: "Sam", MoodText: "Happy"}
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.SetAnswers(ctx, sub.ID, answers())
	if err != nil {
		t.Fatalf("set answers: %v", err)
	}
	if got.Answers == nil || got.Answers[9] != "answer 10" {
		t.Fatalf("answers did not round-trip: %+v", got.Answers)
	}

	got, err = repo.ApplyVerdict(ctx, sub.ID, VerdictData{
		Truthfulness:   "Potentially Inconsistent",
		Reasoning:      "Mood contradicts answers.",
		Recommendation: "Check in today.",
		AlertCaretaker: true,
	})
	if err != nil {
		t.Fatalf("apply verdict: %v", err)
	}
	if got.Status != StatusComplete || !got.AlertCaretaker || !got.Alerted {
		t.Fatalf("unexpected state after alerting verdict: %+v", got)
	}

	// A later calmer verdict clears the flag but never the alerted memory.
	got, err = repo.ApplyVerdict(ctx, sub.ID, VerdictData{
		Truthfulness:   "Genuine",
		Reasoning:      "Consistent.",
		Recommendation: "No immediate action recommended, continue normal observation.",
	})
	if err != nil {
		t.Fatalf("apply second verdict: %v", err)
	}
	if got.AlertCaretaker {
		t.Error("expected alert_caretaker to follow the latest verdict")
	}
	if !got.Alerted {
		t.Error("expected alerted to stay true")
	}
	if got.Truthfulness != "Genuine" {
		t.Errorf("truthfulness = %q, want Genuine", got.Truthfulness)
	}
}

func TestSubmissionClaims(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	sub := &Submission{StudentID: "Sam", MoodText: "Happy"}
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.BeginReassessment(ctx, sub.ID); !errors.Is(err, ErrInFlight) {
		t.Errorf("reassessing a row without answers: got %v, want ErrInFlight", err)
	}
	if _, err := repo.SetAnswers(ctx, sub.ID, answers()); err != nil {
		t.Fatalf("set answers: %v", err)
	}
	if _, err := repo.SetAnswers(ctx, sub.ID, answers()); !errors.Is(err, ErrInFlight) {
		t.Errorf("second set answers while pending: got %v, want ErrInFlight", err)
	}
	if _, err := repo.BeginReassessment(ctx, sub.ID); !errors.Is(err, ErrInFlight) {
		t.Errorf("reassessing a pending row: got %v, want ErrInFlight", err)
	}

	if _, err := repo.ApplyVerdict(ctx, sub.ID, VerdictData{Truthfulness: "Genuine"}); err != nil {
		t.Fatalf("apply verdict: %v", err)
	}
	got, err := repo.BeginReassessment(ctx, sub.ID)
	if err != nil {
		t.Fatalf("begin reassessment: %v", err)
	}
	if got.Status != StatusPending || got.Truthfulness != TruthProcessing || got.Answers == nil {
		t.Errorf("unexpected claimed state: %+v", got)
	}
	if _, err := repo.BeginReassessment(ctx, sub.ID); !errors.Is(err, ErrInFlight) {
		t.Errorf("second claim: got %v, want ErrInFlight", err)
	}

	if _, err := repo.MarkFailed(ctx, sub.ID, "timeout"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if _, err := repo.SetAnswers(ctx, sub.ID, answers()); err != nil {
		t.Errorf("answers after a failure should be accepted: %v", err)
	}

	if _, err := repo.BeginReassessment(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row: got %v, want ErrNotFound", err)
	}
	if _, err := repo.SetAnswers(ctx, "missing", answers()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row: got %v, want ErrNotFound", err)
	}
}

func TestSubmissionMarkFailed(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	sub := &Submission{StudentID: "Sam", MoodText: "ok"}
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.MarkFailed(ctx, sub.ID, "assessment failed: timeout")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if got.Status != StatusFailed || got.Truthfulness != TruthError || got.Failure == "" {
		t.Errorf("unexpected failed state: %+v", got)
	}

	if _, err := repo.MarkFailed(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestSubmissionFailStale(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubmissionRepo()
	ctx := context.Background()

	withAnswers := &Submission{StudentID: "a", MoodText: "m"}
	noAnswers := &Submission{StudentID: "b", MoodText: "m"}
	done := &Submission{StudentID: "c", MoodText: "m"}
	for _, sub := range []*Submission{withAnswers, noAnswers, done} {
		if err := repo.Create(ctx, sub); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.SetAnswers(ctx, withAnswers.ID, answers()); err != nil {
		t.Fatalf("set answers: %v", err)
	}
	if _, err := repo.SetAnswers(ctx, done.ID, answers()); err != nil {
		t.Fatalf("set answers: %v", err)
	}
	if _, err := repo.ApplyVerdict(ctx, done.ID, VerdictData{Truthfulness: "Genuine"}); err != nil {
		t.Fatalf("apply verdict: %v", err)
	}

	// Nothing is older than an hour ago.
	stale, err := repo.FailStale(ctx, time.Now().Add(-time.Hour), "assessment did not complete")
	if err != nil {
		t.Fatalf("fail stale: %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("expected no stale rows, got %d", len(stale))
	}

	stale, err = repo.FailStale(ctx, time.Now().Add(time.Minute), "assessment did not complete")
	if err != nil {
		t.Fatalf("fail stale: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != withAnswers.ID {
		t.Fatalf("expected only the pending row with answers, got %+v", stale)
	}
	if stale[0].Status != StatusFailed || stale[0].Failure != "assessment did not complete" {
		t.Errorf("unexpected swept state: %+v", stale[0])
	}

	got, _ := repo.Get(ctx, noAnswers.ID)
	if got.Status != StatusPending {
		t.Errorf("row without answers was swept: %+v", got)
	}
}

func TestLLMEventsQueryAndUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "risk-assessment", InputTokens: 100, OutputTokens: 40, LatencyMs: 300, Success: true, RequestBody: "[user]\nMood: calm", ResponseBody: `{"truthfulness":"Genuine"}`},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "risk-assessment", InputTokens: 120, OutputTokens: 0, LatencyMs: 100, Success: false, ErrorMessage: "timeout"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "student-chat", InputTokens: 50, OutputTokens: 20, LatencyMs: 200, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d events, want 2", len(recs))
	}
	if recs[0].Purpose != "student-chat" || recs[0].Sequence <= recs[1].Sequence {
		t.Errorf("expected newest first, got %+v", recs)
	}

	first, err := repo.QueryLLMEvents(ctx, QueryOpts{Before: recs[1].Sequence})
	if err != nil {
		t.Fatalf("query before: %v", err)
	}
	if len(first) != 1 || first[0].ResponseBody != `{"truthfulness":"Genuine"}` {
		t.Fatalf("unexpected events before %d: %+v", recs[1].Sequence, first)
	}

	one, err := repo.GetLLMEvent(ctx, first[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if one.RequestBody != "[user]\nMood: calm" || !one.Success {
		t.Errorf("unexpected event: %+v", one)
	}
	if _, err := repo.GetLLMEvent(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	risk := byPurpose[0]
	if risk.Purpose != "risk-assessment" || risk.Calls != 2 || risk.InputTokens != 220 || risk.AvgLatencyMs != 200 {
		t.Errorf("unexpected risk-assessment usage: %+v", risk)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.0-flash" || byModel[0].OutputTokens != 40 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestAlertEventsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "risk-assessment", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	err := repo.AppendAlert(ctx, AlertEventData{
		Student:   "Sam",
		Recipient: "+15550001111",
		Body:      "Warning: Student 'Sam' ...",
		Outcome:   AlertSent,
		MessageID: "SM123",
	})
	if err != nil {
		t.Fatalf("append alert: %v", err)
	}

	alerts, err := repo.QueryAlerts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Sequence != 2 {
		t.Errorf("alert sequence = %d, want 2 (after the LLM event)", alerts[0].Sequence)
	}
	if alerts[0].Outcome != AlertSent || alerts[0].MessageID != "SM123" {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}
}
