package store

import (
	"context"
	"errors"
	"time"

	"github.com/blumie/wellcheck/internal/quiz"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInFlight is returned when a submission already has an assessment
// underway.
var ErrInFlight = errors.New("assessment already in progress")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Staging status of a submission.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Truthfulness sentinels shown while no verdict is available.
const (
	TruthProcessing = "Processing..."
	TruthError      = "Error"
)

// Submission is one mood check-in and, once assessed, its verdict.
type Submission struct {
	ID             string          `json:"id"`
	StudentID      string          `json:"studentId"`
	MoodText       string          `json:"moodText"`
	MoodColor      string          `json:"moodColor"`
	R              int             `json:"r"`
	G              int             `json:"g"`
	B              int             `json:"b"`
	Status         string          `json:"status"`
	Truthfulness   string          `json:"truthfulness"`
	Reasoning      string          `json:"reasoning"`
	Recommendation string          `json:"recommendation"`
	AlertCaretaker bool            `json:"alertCaretaker"`
	Alerted        bool            `json:"alerted"`
	Summary        string          `json:"summary,omitempty"`
	Answers        *quiz.AnswerSet `json:"answers,omitempty"`
	Failure        string          `json:"failure,omitempty"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// VerdictData is the assessment result merged into a submission.
type VerdictData struct {
	Truthfulness   string
	Reasoning      string
	Recommendation string
	AlertCaretaker bool
}

// SubmissionRepo persists submissions and their staging status.
type SubmissionRepo interface {
	// Create inserts a new pending submission. An empty ID is assigned a
	// UUID; zero timestamps are set to now.
	Create(ctx context.Context, sub *Submission) error

	// Get returns the submission or ErrNotFound.
	Get(ctx context.Context, id string) (*Submission, error)

	// List returns the most recent submissions first.
	List(ctx context.Context, limit int) ([]Submission, error)

	// SetAnswers stores the quiz answers and resets the row to pending.
	// It reports ErrInFlight while the row is pending with answers.
	SetAnswers(ctx context.Context, id string, answers quiz.AnswerSet) (*Submission, error)

	// BeginReassessment moves an answered row back to pending so it can
	// be assessed again. It reports ErrInFlight while the row is pending
	// or has no answers.
	BeginReassessment(ctx context.Context, id string) (*Submission, error)

	// SetSummary stores the mood summary.
	SetSummary(ctx context.Context, id, summary string) (*Submission, error)

	// ApplyVerdict merges a verdict and marks the row complete. Alerted
	// only ever goes from false to true.
	ApplyVerdict(ctx context.Context, id string, v VerdictData) (*Submission, error)

	// MarkFailed marks the row failed with the Error sentinel.
	MarkFailed(ctx context.Context, id, reason string) (*Submission, error)

	// FailStale marks pending rows that have answers and were last
	// touched before cutoff as failed, returning them.
	FailStale(ctx context.Context, cutoff time.Time, reason string) ([]Submission, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Alert outcomes.
const (
	AlertSent    = "sent"
	AlertSkipped = "skipped"
	AlertFailed  = "failed"

	// AlertUnknown is a send that timed out. The message may still have
	// been delivered.
	AlertUnknown = "unknown"
)

// AlertEventData captures one alert dispatch attempt.
type AlertEventData struct {
	Student      string `json:"student"`
	Recipient    string `json:"recipient"`
	Body         string `json:"body"`
	Outcome      string `json:"outcome"`
	MessageID    string `json:"messageId,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// AlertEventRecord is a stored alert event.
type AlertEventRecord struct {
	ID        int       `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	AlertEventData
}

// EventRepo provides append and query access to the audit events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one LLM event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	// AppendAlert records an alert dispatch attempt.
	AppendAlert(ctx context.Context, data AlertEventData) error

	// QueryAlerts returns alert events, newest first.
	QueryAlerts(ctx context.Context, opts QueryOpts) ([]AlertEventRecord, error)
}
