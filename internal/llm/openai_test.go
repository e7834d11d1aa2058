package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// completion writes a chat.completion body with the given content.
func completion(w http.ResponseWriter, content, finish string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "served-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	})
}

func compatServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func TestOpenAIProvider_SchemaResponseFormat(t *testing.T) {
	var body map[string]any
	url := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		completion(w, `{"topics":["Algebra"]}`, "stop")
	})

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Generate(context.Background(), Request{
		System:   "You write exam topics.",
		Messages: UserPrompt("List topics."),
		Schema:   topicSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 65 || resp.Model != "served-model" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("response_format = %v, want json_schema", format)
	}
}

func TestDeepSeekProvider_JSONObjectMode(t *testing.T) {
	var body struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	url := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		completion(w, `{"topics":["Mechanics","Optics"]}`, "stop")
	})

	p, err := NewDeepSeekProvider(ProviderConfig{APIKey: "k", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "deepseek-chat" {
		t.Fatalf("model = %q, want deepseek-chat", p.ModelID())
	}
	if _, err := p.Generate(context.Background(), Request{Messages: UserPrompt("topics"), Schema: topicSchema()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format.type = %q, want json_object", body.ResponseFormat.Type)
	}
	if len(body.Messages) == 0 || body.Messages[0].Role != "system" ||
		!strings.Contains(body.Messages[0].Content, `"topics"`) {
		t.Fatalf("schema not carried in system prompt: %+v", body.Messages)
	}
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	url := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		completion(w, `{"topics":"not a list"}`, "stop")
	})
	p, _ := NewDeepSeekProvider(ProviderConfig{APIKey: "k", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("x"), Schema: topicSchema()})
	if !IsInvalidOutput(err) {
		t.Fatalf("expected invalid output, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	url := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
		completion(w, `{"topics":["Alg`, "length")
	})
	p, _ := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("x"), Schema: topicSchema()})
	var trunc *TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected *TruncatedError, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *UnavailableError; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		url := compatServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "nope", "type": "server_error"},
			})
		})
		p, _ := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: url})
		_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("x")})
		if !tt.check(err) {
			t.Errorf("status %d mapped to %T (%v)", tt.status, err, err)
		}
	}
}

func TestNewCompatProvider_RequiresKey(t *testing.T) {
	if _, err := NewDeepSeekProvider(ProviderConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
