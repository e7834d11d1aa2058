package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/jambcoach/internal/store"
)

type recorderStub struct {
	events []store.LLMEvent
	err    error
}

func (r *recorderStub) AppendLLMEvent(_ context.Context, e store.LLMEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestLogging_RecordsSuccessAndFailure(t *testing.T) {
	rec := &recorderStub{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"topics":["Algebra"]}`), Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		MockResponse{Err: &UnavailableError{Err: errors.New("boom")}},
	)
	p := WithLogging(mock, ProviderDeepSeek, rec, nil)
	ctx := WithPurpose(context.Background(), PurposeTopics)

	req := Request{System: "sys", Messages: UserPrompt("list topics"), Schema: topicSchema()}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error from second call")
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	ok, failed := rec.events[0], rec.events[1]
	if !ok.Success || ok.Provider != ProviderDeepSeek || ok.Purpose != PurposeTopics ||
		ok.InputTokens != 12 || ok.ResponseBody == "" {
		t.Errorf("success event = %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[schema: test-topic-list]") ||
		!strings.Contains(ok.RequestBody, "list topics") {
		t.Errorf("request body = %q", ok.RequestBody)
	}
	if failed.Success || !strings.Contains(failed.ErrorMessage, "boom") {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestLogging_RecorderFailureDoesNotFailCall(t *testing.T) {
	rec := &recorderStub{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	if _, err := WithLogging(mock, ProviderMock, rec, nil).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("recorder error leaked: %v", err)
	}
}

func TestNew_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestNew_WrapsRealProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeepSeek.APIKey = "k"
	p, err := New(context.Background(), cfg, &recorderStub{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*TimeoutProvider); !ok {
		t.Fatalf("outermost decorator = %T, want *TimeoutProvider", p)
	}
	if p.ModelID() != "deepseek-chat" {
		t.Fatalf("model = %q", p.ModelID())
	}

	cfg.Provider = "nope"
	if _, err := New(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
