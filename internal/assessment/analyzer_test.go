package assessment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blumie/wellcheck/internal/llm"
)

func TestSummarize(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"  The student seems calm and content. "}`),
	})
	a := NewAnalyzer(mock, DefaultConfig())

	got, err := a.Summarize(context.Background(), "calm, like a quiet lake")
	require.NoError(t, err)
	assert.Equal(t, "The student seems calm and content.", got)

	req, _ := mock.LastCall()
	assert.Same(t, SummarySchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "quiet lake")
}

func TestSummarizeBlankMood(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := NewAnalyzer(mock, DefaultConfig()).Summarize(context.Background(), " ")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, mock.CallCount())
}

func TestSummarizeBlankReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"summary":""}`)})
	_, err := NewAnalyzer(mock, DefaultConfig()).Summarize(context.Background(), "tired")
	assert.Error(t, err)
}
