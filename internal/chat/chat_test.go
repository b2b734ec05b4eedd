package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blumie/wellcheck/internal/llm"
	"github.com/blumie/wellcheck/internal/quiz"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = llm.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}
	return cfg
}

func TestReplyStudentChat(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"response":"That sounds heavy. What's been on your mind?","isFinalMessage":false,"finalMessage":""}`),
	})
	svc := NewService(mock, testConfig())

	r, err := svc.Reply(context.Background(), Conversation{Mood: "stressed"})
	require.NoError(t, err)
	assert.Equal(t, &Reply{Response: "That sounds heavy. What's been on your mind?"}, r)

	req, _ := mock.LastCall()
	assert.Same(t, StudentChatSchema, req.Schema)
	assert.Contains(t, req.System, "stressed")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
}

func TestReplyFinalMessageOnlyWhenFinal(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"response":"ok","isFinalMessage":false,"finalMessage":"ignored"}`)},
		llm.MockResponse{Content: json.RawMessage(`{"response":"Take care.","isFinalMessage":true,"finalMessage":"Be kind to yourself today."}`)},
	)
	svc := NewService(mock, testConfig())

	r, err := svc.Reply(context.Background(), Conversation{Mood: "tired"})
	require.NoError(t, err)
	assert.Empty(t, r.FinalMessage)

	r, err = svc.Reply(context.Background(), Conversation{Mood: "tired"})
	require.NoError(t, err)
	assert.True(t, r.Final)
	assert.Equal(t, "Be kind to yourself today.", r.FinalMessage)
}

func TestReplyStoryChat(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"response":"Thanks for sharing.","isFinalMessage":true,"finalThought":"Feelings pass."}`),
	})
	svc := NewService(mock, testConfig())

	answers := quiz.AnswerSet{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10"}
	r, err := svc.Reply(context.Background(), Conversation{
		Mood:    "anxious",
		Answers: &answers,
		History: []Turn{
			{Role: RoleModel, Content: "How are you?"},
			{Role: RoleUser, Content: "Not great."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Feelings pass.", r.FinalMessage)

	req, _ := mock.LastCall()
	assert.Same(t, StoryChatSchema, req.Schema)
	assert.Contains(t, req.System, quiz.Bank[0].Prompt)
	assert.Contains(t, req.System, "a10")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
	assert.Equal(t, "Not great.", req.Messages[2].Content)
}

func TestReplyRejectsInvalidConversation(t *testing.T) {
	tests := []struct {
		name string
		conv Conversation
	}{
		{"no mood", Conversation{}},
		{"blank mood", Conversation{Mood: "  "}},
		{"bad role", Conversation{Mood: "ok", History: []Turn{{Role: "system", Content: "x"}}}},
		{"empty turn", Conversation{Mood: "ok", History: []Turn{{Role: RoleUser}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			_, err := NewService(mock, testConfig()).Reply(context.Background(), tt.conv)
			assert.ErrorIs(t, err, ErrInvalidConversation)
			assert.Equal(t, 0, mock.CallCount())
		})
	}
}

func TestReplyRetriesTransientFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}},
		llm.MockResponse{Content: json.RawMessage(`{"response":"Hi!","isFinalMessage":false,"finalMessage":""}`)},
	)
	svc := NewService(mock, testConfig())

	r, err := svc.Reply(context.Background(), Conversation{Mood: "happy"})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", r.Response)
	assert.Equal(t, 2, mock.CallCount())
}
