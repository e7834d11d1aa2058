package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var answerColumns = []string{
	"id", "sequence", "user_id", "question_id", "question_set_id", "subject",
	"topic", "selected_option", "is_correct", "time_spent_seconds", "answered_at",
}

// updateStats folds one outcome into a question's running mean in a single
// statement. SQLite evaluates every SET expression against the old row, so
// correct_rate sees the pre-increment times_answered.
const updateStats = `UPDATE questions
SET correct_rate = (correct_rate * times_answered + ?) / (times_answered + 1),
    times_answered = times_answered + 1,
    updated_at = ?
WHERE id = ? AND is_active = 1
RETURNING times_answered, correct_rate`

// AppendAnswer records an answer and updates the question's statistics in
// one transaction. Returns ErrNotFound, with nothing written, when the
// question is missing or inactive.
func (s *Store) AppendAnswer(ctx context.Context, a Answer) (Answer, QuestionStats, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}
	a.AnsweredAt = a.AnsweredAt.UTC()

	var stats QuestionStats
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := s.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		a.Sequence = seq

		_, err = exec(ctx, tx, build.Insert(AnswersTable.Name).
			Columns(answerColumns...).
			Values(a.ID, a.Sequence, a.UserID, a.QuestionID, a.SetID, a.Subject,
				a.Topic, a.SelectedOption, a.IsCorrect, a.TimeSpentSeconds, a.AnsweredAt))
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}

		outcome := 0.0
		if a.IsCorrect {
			outcome = 1.0
		}
		err = tx.QueryRowContext(ctx, updateStats, outcome, time.Now().UTC(), a.QuestionID).
			Scan(&stats.TimesAnswered, &stats.CorrectRate)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update question stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return Answer{}, QuestionStats{}, err
	}
	return a, stats, nil
}

// ListAnswers returns a user's answers in submission order. An empty
// subject lists every subject.
func (s *Store) ListAnswers(ctx context.Context, userID, subject string) ([]Answer, error) {
	pred := entsql.EQ("user_id", userID)
	if subject != "" {
		pred = entsql.And(pred, entsql.EQ("subject", subject))
	}
	query, args := build.Select(answerColumns...).
		From(build.Table(AnswersTable.Name)).
		Where(pred).
		OrderBy("sequence").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.Sequence, &a.UserID, &a.QuestionID, &a.SetID,
			&a.Subject, &a.Topic, &a.SelectedOption, &a.IsCorrect,
			&a.TimeSpentSeconds, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
