package interview

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/llm"
)

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0, AverageScore(nil))
	assert.Equal(t, 73, AverageScore([]Session{{OverallScore: 72}, {OverallScore: 73}}))
	assert.Equal(t, 67, AverageScore([]Session{{OverallScore: 60}, {OverallScore: 70}, {OverallScore: 70}}))
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{100, BandStrong}, {70, BandStrong}, {69, BandAverage}, {50, BandAverage}, {49, BandWeak}, {0, BandWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreBand(tt.score), "score %d", tt.score)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30m0s", FormatDuration(1800))
	assert.Equal(t, "12m30s", FormatDuration(750))
}

var sampleFeedback = Feedback{
	Strengths:       []string{"Clear structure"},
	Weaknesses:      []string{"Skipped edge cases"},
	ImprovementTips: []string{"Practice boundary tests"},
}

func mockWithFeedback(t *testing.T, fbs ...Feedback) *llm.MockProvider {
	t.Helper()
	m := llm.NewMockProvider()
	for _, fb := range fbs {
		require.NoError(t, m.AddJSON(fb))
	}
	return m
}

func TestEvaluator(t *testing.T) {
	m := mockWithFeedback(t, sampleFeedback)
	fb, err := NewEvaluator(m).Evaluate(context.Background(), Session{
		ID: "i1", SessionType: "System Design", DurationSeconds: 2700, OverallScore: 58, Notes: "ran out of time",
	})
	require.NoError(t, err)
	assert.Equal(t, sampleFeedback, fb)

	req, ok := m.LastRequest()
	require.True(t, ok)
	assert.Same(t, FeedbackSchema, req.Schema)
	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Interview type: System Design")
	assert.Contains(t, prompt, "Duration: 45m0s")
	assert.Contains(t, prompt, "58/100 (average)")
	assert.Contains(t, prompt, "ran out of time")
}

func TestEvaluatorRejectsEmptyLists(t *testing.T) {
	m := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"strengths":[],"weaknesses":["x"],"improvement_tips":["y"]}`),
	})
	_, err := NewEvaluator(m).Evaluate(context.Background(), Session{SessionType: "HR"})
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

type memStore struct {
	mu    sync.Mutex
	saved map[string]Feedback
}

func (s *memStore) SaveFeedback(_ context.Context, id string, fb Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[id]; ok {
		return ErrFeedbackExists
	}
	s.saved[id] = fb
	return nil
}

func TestServiceProcessesQueueInOrder(t *testing.T) {
	store := &memStore{saved: map[string]Feedback{}}
	svc := NewService(NewEvaluator(mockWithFeedback(t, sampleFeedback, sampleFeedback)), store, 4, nil)

	var (
		mu       sync.Mutex
		outcomes []Outcome
	)
	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Request(ctx, Session{ID: "a", SessionType: "Technical"}, record))
	require.NoError(t, svc.Request(ctx, Session{ID: "b", SessionType: "Behavioral"}, record))
	// A cancelled request context must not abort queued work.
	cancel()
	svc.Close()

	require.Len(t, outcomes, 2)
	assert.Equal(t, "a", outcomes[0].SessionID)
	assert.Equal(t, "b", outcomes[1].SessionID)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
	assert.Len(t, store.saved, 2)

	assert.ErrorIs(t, svc.Request(context.Background(), Session{ID: "c"}, nil), ErrServiceClosed)
	svc.Close()
}

func TestServiceRefusesReviewedInterview(t *testing.T) {
	svc := NewService(NewEvaluator(llm.NewMockProvider()), &memStore{saved: map[string]Feedback{}}, 1, nil)
	defer svc.Close()

	reviewed := Session{ID: "x", Feedback: &sampleFeedback}
	assert.ErrorIs(t, svc.Request(context.Background(), reviewed, nil), ErrFeedbackExists)
	_, err := svc.Evaluate(context.Background(), reviewed)
	assert.ErrorIs(t, err, ErrFeedbackExists)
}

type blockingProvider struct{ release chan struct{} }

func (b blockingProvider) Evaluate(ctx context.Context, _ Session) (Feedback, error) {
	<-b.release
	return Feedback{}, errors.New("evaluator offline")
}

func TestServiceQueueFullAndFailure(t *testing.T) {
	release := make(chan struct{})
	store := &memStore{saved: map[string]Feedback{}}
	svc := NewService(blockingProvider{release: release}, store, 1, nil)

	results := make(chan Outcome, 2)
	push := func(o Outcome) { results <- o }

	require.NoError(t, svc.Request(context.Background(), Session{ID: "1"}, push))
	// Wait for the worker to take the first job so the queue slot is free.
	require.Eventually(t, func() bool { return len(svc.pending) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, svc.Request(context.Background(), Session{ID: "2"}, push))
	assert.ErrorIs(t, svc.Request(context.Background(), Session{ID: "3"}, push), ErrQueueFull)

	close(release)
	svc.Close()
	close(results)
	var failed int
	for o := range results {
		assert.Error(t, o.Err)
		failed++
	}
	assert.Equal(t, 2, failed)
	assert.Empty(t, store.saved)
}
