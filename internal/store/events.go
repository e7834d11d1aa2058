package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"sequence", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
	"created_at",
}

// AppendLLMEvent records one text-generation API call.
func (s *Store) AppendLLMEvent(ctx context.Context, e LLMEvent) error {
	seq, err := s.seq.Next(ctx, s.db)
	if err != nil {
		return err
	}
	_, err = exec(ctx, s.db, build.Insert(LlmRequestEventsTable.Name).
		Columns(llmEventColumns...).
		Values(seq, e.Provider, e.Model, e.Purpose, e.InputTokens, e.OutputTokens,
			e.LatencyMs, e.Success, e.ErrorMessage, e.RequestBody, e.ResponseBody,
			time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// ListLLMEvents returns the most recent LLM events, newest first. A
// non-positive limit returns all of them.
func (s *Store) ListLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error) {
	sel := build.Select(append([]string{"id"}, llmEventColumns...)...).
		From(build.Table(LlmRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var e LLMEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLLMEvent returns one LLM event by id, or ErrNotFound.
func (s *Store) GetLLMEvent(ctx context.Context, id int) (LLMEvent, error) {
	query, args := build.Select(append([]string{"id"}, llmEventColumns...)...).
		From(build.Table(LlmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var e LLMEvent
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.Sequence, &e.Provider,
		&e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LLMEvent{}, ErrNotFound
	}
	if err != nil {
		return LLMEvent{}, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return e, nil
}

// LLMUsage is the aggregated token usage of one purpose and model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMUsage aggregates all LLM events by purpose and model.
func (s *Store) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	query, args := build.Select(
		"purpose", "model",
		entsql.Count("*"),
		"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Avg("latency_ms"),
	).
		From(build.Table(LlmRequestEventsTable.Name)).
		GroupBy("purpose", "model").
		OrderBy("purpose", "model").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u   LLMUsage
			avg float64
		)
		if err := rows.Scan(&u.Purpose, &u.Model, &u.Calls, &u.Failures,
			&u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

// AppendActivity records an audit entry of a user action.
func (s *Store) AppendActivity(ctx context.Context, e ActivityEvent) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}

	seq, err := s.seq.Next(ctx, s.db)
	if err != nil {
		return err
	}
	_, err = exec(ctx, s.db, build.Insert(ActivityEventsTable.Name).
		Columns("sequence", "user_id", "action", "resource_type", "resource_id", "metadata", "created_at").
		Values(seq, e.UserID, e.Action, e.ResourceType, e.ResourceID, string(raw), time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("save activity event: %w", err)
	}
	return nil
}

// ListActivity returns a user's audit entries in the order they happened.
func (s *Store) ListActivity(ctx context.Context, userID string) ([]ActivityEvent, error) {
	query, args := build.Select("id", "sequence", "user_id", "action", "resource_type",
		"resource_id", "metadata", "created_at").
		From(build.Table(ActivityEventsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("sequence").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []ActivityEvent
	for rows.Next() {
		var (
			e   ActivityEvent
			raw string
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.UserID, &e.Action, &e.ResourceType,
			&e.ResourceID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode activity metadata: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
