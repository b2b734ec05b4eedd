// Package chat runs the short supportive conversation a student can have
// after recording a mood, and again after finishing the quiz.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/blumie/wellcheck/internal/llm"
	"github.com/blumie/wellcheck/internal/quiz"
)

// Purposes used to label chat calls in the LLM audit log.
const (
	PurposeStudentChat = "student-chat"
	PurposeStoryChat   = "story-chat"
)

// Turn roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// kickoff opens every conversation so providers that require a leading
// user message accept an empty history.
const kickoff = "Hi. I just shared how I'm feeling."

// Turn is one message of the conversation.
type Turn struct {
	Role    string `json:"role" validate:"oneof=user model"`
	Content string `json:"content" validate:"required"`
}

// Conversation is everything the chatbot sees. Answers switches to the
// post-quiz flavour.
type Conversation struct {
	Mood    string          `json:"mood" validate:"required"`
	Answers *quiz.AnswerSet `json:"answers,omitempty"`
	History []Turn          `json:"history" validate:"dive"`
}

// Reply is the chatbot's next turn.
type Reply struct {
	Response     string `json:"response"`
	Final        bool   `json:"isFinalMessage"`
	FinalMessage string `json:"finalMessage,omitempty"`
}

// ErrInvalidConversation wraps every rejected Conversation.
var ErrInvalidConversation = errors.New("invalid conversation")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config tunes chat requests.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Retry       llm.RetryConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		Retry:       llm.DefaultConfig().Retry,
	}
}

// Service answers chat turns.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService wraps provider with retries per cfg.Retry. Chat is not on
// the alert path, so transient failures are worth retrying.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{
		provider: llm.WithRetry(provider, cfg.Retry),
		cfg:      cfg,
	}
}

type studentOutput struct {
	Response       string `json:"response"`
	IsFinalMessage bool   `json:"isFinalMessage"`
	FinalMessage   string `json:"finalMessage"`
}

type storyOutput struct {
	Response       string `json:"response"`
	IsFinalMessage bool   `json:"isFinalMessage"`
	FinalThought   string `json:"finalThought"`
}

// Reply produces the next chatbot turn for c.
func (s *Service) Reply(ctx context.Context, c Conversation) (*Reply, error) {
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversation, err)
	}
	if strings.TrimSpace(c.Mood) == "" {
		return nil, fmt.Errorf("%w: mood is blank", ErrInvalidConversation)
	}

	system, err := buildSystemPrompt(c)
	if err != nil {
		return nil, fmt.Errorf("build chat prompt: %w", err)
	}

	schema, purpose := StudentChatSchema, PurposeStudentChat
	if c.Answers != nil {
		schema, purpose = StoryChatSchema, PurposeStoryChat
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, purpose), llm.Request{
		System:      system,
		Messages:    buildMessages(c.History),
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat reply failed: %w", err)
	}

	return decodeReply(resp.Content, c.Answers != nil)
}

func buildMessages(history []Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: kickoff})
	for _, t := range history {
		role := llm.RoleUser
		if t.Role == RoleModel {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return msgs
}

func decodeReply(raw json.RawMessage, story bool) (*Reply, error) {
	if story {
		var out storyOutput
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("failed to parse chat reply: %w", err)
		}
		r := &Reply{Response: out.Response, Final: out.IsFinalMessage}
		if out.IsFinalMessage {
			r.FinalMessage = out.FinalThought
		}
		return r, nil
	}

	var out studentOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse chat reply: %w", err)
	}
	r := &Reply{Response: out.Response, Final: out.IsFinalMessage}
	if out.IsFinalMessage {
		r.FinalMessage = out.FinalMessage
	}
	return r, nil
}
