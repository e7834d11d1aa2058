package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// GetQuestion returns an active question. Missing and inactive questions
// both yield ErrNotFound.
func (s *Store) GetQuestion(ctx context.Context, id string) (Question, error) {
	query, args := build.Select(questionColumns...).
		From(build.Table(QuestionsTable.Name)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_active", true))).
		Query()
	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		return Question{}, fmt.Errorf("get question %s: %w", id, err)
	}
	return q, nil
}

// ListQuestions returns the active questions of a set in position order.
func (s *Store) ListQuestions(ctx context.Context, setID string) ([]Question, error) {
	query, args := build.Select(questionColumns...).
		From(build.Table(QuestionsTable.Name)).
		Where(entsql.And(entsql.EQ("question_set_id", setID), entsql.EQ("is_active", true))).
		OrderBy("position").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions of %s: %w", setID, err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	err := r.Scan(&q.ID, &q.SetID, &q.Subject, &q.Topic, &q.Difficulty, &q.Text,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3],
		&q.CorrectOption, &q.Explanation, &q.Position, &q.IsActive,
		&q.TimesAnswered, &q.CorrectRate, &q.Source, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}
