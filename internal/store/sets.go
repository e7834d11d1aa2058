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

var setColumns = []string{
	"id", "subject", "title", "description", "delivery_date", "delivered_at",
	"total_questions", "is_active", "sequence", "source", "created_at",
}

var questionColumns = []string{
	"id", "question_set_id", "subject", "topic", "difficulty", "text",
	"option_a", "option_b", "option_c", "option_d", "correct_option",
	"explanation", "position", "is_active", "times_answered", "correct_rate",
	"source", "created_at", "updated_at",
}

// CreateSet persists a question set together with all of its questions in
// one transaction. Either everything lands or nothing does. IDs, positions,
// sequence and timestamps are assigned here; the stored set is returned.
func (s *Store) CreateSet(ctx context.Context, set QuestionSet, questions []Question) (QuestionSet, error) {
	if len(questions) == 0 {
		return QuestionSet{}, fmt.Errorf("create set: no questions")
	}

	now := time.Now().UTC()
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if set.DeliveredAt.IsZero() {
		set.DeliveredAt = now
	}
	set.DeliveredAt = set.DeliveredAt.UTC()
	set.TotalQuestions = len(questions)
	set.IsActive = true
	set.CreatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := s.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		set.Sequence = seq

		_, err = exec(ctx, tx, build.Insert(QuestionSetsTable.Name).
			Columns(setColumns...).
			Values(set.ID, set.Subject, set.Title, set.Description, set.DeliveryDate,
				set.DeliveredAt, set.TotalQuestions, set.IsActive, set.Sequence,
				set.Source, set.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert question set: %w", err)
		}

		ins := build.Insert(QuestionsTable.Name).Columns(questionColumns...)
		for i := range questions {
			q := &questions[i]
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			q.SetID = set.ID
			if q.Subject == "" {
				q.Subject = set.Subject
			}
			q.Position = i + 1
			q.IsActive = true
			q.TimesAnswered = 0
			q.CorrectRate = 0
			q.CreatedAt, q.UpdatedAt = now, now
			ins.Values(q.ID, q.SetID, q.Subject, q.Topic, q.Difficulty, q.Text,
				q.Options[0], q.Options[1], q.Options[2], q.Options[3],
				q.CorrectOption, q.Explanation, q.Position, q.IsActive,
				q.TimesAnswered, q.CorrectRate, q.Source, q.CreatedAt, q.UpdatedAt)
		}
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return QuestionSet{}, err
	}
	return set, nil
}

// GetSet returns the set with the given id, active or not.
func (s *Store) GetSet(ctx context.Context, id string) (QuestionSet, error) {
	query, args := build.Select(setColumns...).
		From(build.Table(QuestionSetsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	set, err := scanSet(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return QuestionSet{}, ErrNotFound
	}
	if err != nil {
		return QuestionSet{}, fmt.Errorf("get question set %s: %w", id, err)
	}
	return set, nil
}

// ListActiveSets returns every active set of a subject in creation order.
func (s *Store) ListActiveSets(ctx context.Context, subject string) ([]QuestionSet, error) {
	query, args := build.Select(setColumns...).
		From(build.Table(QuestionSetsTable.Name)).
		Where(entsql.And(entsql.EQ("subject", subject), entsql.EQ("is_active", true))).
		OrderBy("sequence").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	var sets []QuestionSet
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// ListSubjects returns the distinct subjects that have at least one active set.
func (s *Store) ListSubjects(ctx context.Context) ([]string, error) {
	query, args := build.Select("subject").Distinct().
		From(build.Table(QuestionSetsTable.Name)).
		Where(entsql.EQ("is_active", true)).
		OrderBy("subject").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subj string
		if err := rows.Scan(&subj); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subj)
	}
	return subjects, rows.Err()
}

// HasSetOnDate reports whether an active set of subject was delivered on
// the given calendar date (YYYY-MM-DD).
func (s *Store) HasSetOnDate(ctx context.Context, subject, date string) (bool, error) {
	query, args := build.Select(entsql.Count("*")).
		From(build.Table(QuestionSetsTable.Name)).
		Where(entsql.And(
			entsql.EQ("subject", subject),
			entsql.EQ("delivery_date", date),
			entsql.EQ("is_active", true),
		)).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("count sets on %s: %w", date, err)
	}
	return n > 0, nil
}

// DeactivateSet soft-deletes an active set. Returns ErrNotFound when no
// active set has that id.
func (s *Store) DeactivateSet(ctx context.Context, id string) error {
	return deactivateSet(ctx, s.db, id)
}

// DeleteSet soft-deletes an active set and removes userID's grant for it in
// one transaction. Returns ErrNotFound when no active set has that id.
func (s *Store) DeleteSet(ctx context.Context, userID, setID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deactivateSet(ctx, tx, setID); err != nil {
			return err
		}
		return revokeGrant(ctx, tx, userID, setID)
	})
}

func deactivateSet(ctx context.Context, q querier, id string) error {
	res, err := exec(ctx, q, build.Update(QuestionSetsTable.Name).
		Set("is_active", false).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_active", true))))
	if err != nil {
		return fmt.Errorf("deactivate set %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate set %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(r rowScanner) (QuestionSet, error) {
	var set QuestionSet
	err := r.Scan(&set.ID, &set.Subject, &set.Title, &set.Description,
		&set.DeliveryDate, &set.DeliveredAt, &set.TotalQuestions, &set.IsActive,
		&set.Sequence, &set.Source, &set.CreatedAt)
	return set, err
}
