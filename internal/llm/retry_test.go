package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

var okReply = MockResponse{Content: json.RawMessage(`{"ok":true}`)}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
}

func TestRetry(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("schema")}}
	tests := []struct {
		name      string
		replies   []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first try", []MockResponse{okReply}, false, 1},
		{"transient then ok", []MockResponse{down(), down(), okReply}, false, 3},
		{"exhausted", []MockResponse{down(), down(), down(), okReply}, true, 3},
		{"rate limited", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, okReply}, false, 2},
		{"truncation is final", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, true, 1},
		{"invalid retried once", []MockResponse{invalid, invalid, okReply}, true, 2},
		{"invalid then ok", []MockResponse{invalid, okReply}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMockProvider(tt.replies...)
			resp, err := WithRetry(m, fastRetry(3)).Generate(context.Background(), Request{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, m.CallCount())
		})
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	m := NewMockProvider(MockResponse{Err: context.Canceled}, okReply)
	_, err := WithRetry(m, fastRetry(3)).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.CallCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}
	m = NewMockProvider(down(), okReply)
	_, err = WithRetry(m, slow).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.CallCount())
}

func TestRetryDelayIsCapped(t *testing.T) {
	r := &retryProvider{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := range 4 {
		d := r.delay(attempt, errors.New("x"))
		assert.LessOrEqual(t, d, 2400*time.Millisecond)
		assert.GreaterOrEqual(t, d, 0*time.Second)
	}
	assert.Equal(t, 7*time.Second, r.delay(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))
}

func TestDecoratorsKeepIdentity(t *testing.T) {
	var p Provider = NewMockProvider()
	p = WithTimeout(WithRetry(WithLogging(p, nil, nil), fastRetry(1)), time.Second)
	assert.Equal(t, "mock", p.ModelID())
	assert.Equal(t, ProviderMock, providerName(p))
}

func TestTimeoutBoundsCall(t *testing.T) {
	var deadline time.Time
	p := WithTimeout(providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		deadline, _ = ctx.Deadline()
		return &Response{}, nil
	}), time.Minute)
	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, deadline.IsZero())

	bare := NewMockProvider()
	assert.Same(t, bare, WithTimeout(bare, 0))
}

type providerFunc func(context.Context, Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }

func (providerFunc) ModelID() string { return "func" }
