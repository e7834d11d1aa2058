package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"topics":["Cell Biology"]}`, "end_turn"))
	})
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("friendly model name not resolved: %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write exam topics.",
		Messages:  UserPrompt("List Biology topics."),
		MaxTokens: 256,
		Schema:    topicSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Fatalf("total tokens = %d, want 80", resp.Usage.TotalTokens)
	}
	if resp.StopReason != StopEnd {
		t.Fatalf("stop reason = %q", resp.StopReason)
	}
}

func TestAnthropicProvider_MaxTokens(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"topics":[`, "max_tokens"))
	})
	_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("x"), MaxTokens: 8})
	var trunc *TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected *TruncatedError, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	})
	_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("x"), MaxTokens: 8})
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected *RateLimitError, got %T (%v)", err, err)
	}
}
