package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func down() MockResponse {
	return MockResponse{Err: &UnavailableError{Err: errors.New("connection refused")}}
}

func TestRetry(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	badJSON := MockResponse{Err: &InvalidOutputError{Content: json.RawMessage(`nope`), Err: errors.New("bad")}}

	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{ok}, false, 1},
		{"transient then success", []MockResponse{down(), ok}, false, 2},
		{"all attempts fail", []MockResponse{down(), down(), down()}, true, 3},
		{"truncation is final", []MockResponse{{Err: &TruncatedError{}}, ok}, true, 1},
		{"invalid output retried once", []MockResponse{badJSON, badJSON, ok}, true, 2},
		{"invalid output then success", []MockResponse{badJSON, ok}, false, 2},
		{"rate limit honors retry-after", []MockResponse{{Err: &RateLimitError{RetryAfter: time.Millisecond}}, ok}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_CanceledContextStopsBackoff(t *testing.T) {
	mock := NewMockProvider(down(), down(), MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	if _, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTimeoutProvider(t *testing.T) {
	mock := &MockProvider{Handler: func(Request) MockResponse { return MockResponse{Content: json.RawMessage(`{}`)} }}
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("zero timeout should return the provider unchanged")
	}

	var deadline bool
	inner := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		_, deadline = ctx.Deadline()
		return &Response{}, nil
	})
	if _, err := WithTimeout(inner, time.Second).Generate(context.Background(), Request{}); err != nil {
		t.Fatal(err)
	}
	if !deadline {
		t.Fatal("expected a deadline on the inner context")
	}
}

type providerFunc func(ctx context.Context, req Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
