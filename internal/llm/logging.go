package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/store"
)

// EventRecorder persists LLM request events. *store.Store implements it.
type EventRecorder interface {
	AppendLLMEvent(ctx context.Context, e store.LLMEvent) error
}

// LoggingProvider records every call, successful or not, to an
// EventRecorder and emits a structured log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder EventRecorder
	log      *logger.Logger
}

// WithLogging wraps p. A nil recorder only logs.
func WithLogging(p Provider, providerName string, rec EventRecorder, log *logger.Logger) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		recorder: rec,
		log:      logger.OrNop(log).With("component", "llm", "provider", providerName),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start).Milliseconds()

	ev := store.LLMEvent{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency,
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "purpose", ev.Purpose, "latency_ms", latency, "error", err)
	} else {
		l.log.Debug("llm request", "purpose", ev.Purpose, "latency_ms", latency,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	if l.recorder != nil {
		// The event row is bookkeeping; a failed write never fails the call.
		if recErr := l.recorder.AppendLLMEvent(context.WithoutCancel(ctx), ev); recErr != nil {
			l.log.Warn("failed to record llm request event", "error", recErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// renderRequest flattens a request into the text stored with the event.
func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
