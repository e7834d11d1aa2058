package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned result for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline runs. It
// answers from Handler when set, otherwise from a FIFO queue, and records
// every request. Safe for concurrent use.
type MockProvider struct {
	// Handler, when non-nil, computes the response for each request.
	Handler func(Request) MockResponse

	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

// NewMockProvider creates a MockProvider with a queue of canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next response. An exhausted queue yields an
// UnavailableError.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	var (
		resp MockResponse
		ok   bool
	)
	if m.Handler == nil && len(m.responses) > 0 {
		resp, ok = m.responses[0], true
		m.responses = m.responses[1:]
	}
	handler := m.Handler
	m.mu.Unlock()

	if handler != nil {
		resp, ok = handler(req), true
	}
	if !ok {
		return nil, &UnavailableError{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := checkOutput(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
