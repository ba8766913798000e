package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu     sync.Mutex
	events []RequestEvent
	err    error
}

func (r *recorder) AppendLLMRequest(_ context.Context, ev RequestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestLoggingRecordsEveryCall(t *testing.T) {
	rec := &recorder{}
	core, logs := observer.New(zap.DebugLevel)
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"score":64,"tips":["x"]}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("down")},
	)
	p := WithLogging(m, rec, zap.New(core))
	ctx := WithPurpose(context.Background(), PurposeInterviewFeedback)

	_, err := p.Generate(ctx, scoreRequest())
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{Messages: UserPrompt("again")})
	require.Error(t, err)

	require.Len(t, rec.events, 2)
	ok := rec.events[0]
	assert.Equal(t, ProviderMock, ok.Provider)
	assert.Equal(t, PurposeInterviewFeedback, ok.Purpose)
	assert.True(t, ok.Success)
	assert.Equal(t, 7, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\nYou grade interviews.")
	assert.Contains(t, ok.RequestBody, "[schema test-score]")
	assert.JSONEq(t, `{"score":64,"tips":["x"]}`, ok.ResponseBody)

	failed := rec.events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "down", failed.ErrorMessage)

	assert.Equal(t, 1, logs.FilterMessage("llm request").Len())
	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
}

func TestLoggingSurvivesRecorderFailure(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), rec, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("record llm request event").Len())
}
