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

var progressColumns = []string{
	"user_id", "subject", "total_attempted", "total_correct", "average_score",
	"weak_topics", "strong_topics", "last_practice_date", "predicted_score",
	"updated_at",
}

// UpsertProgress replaces the (user, subject) row with p, overwriting every
// column. Last writer wins. A zero UpdatedAt is stamped with the write time.
func (s *Store) UpsertProgress(ctx context.Context, p SubjectProgress) error {
	weak, err := marshalTopics(p.WeakTopics)
	if err != nil {
		return err
	}
	strong, err := marshalTopics(p.StrongTopics)
	if err != nil {
		return err
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = exec(ctx, s.db, build.Insert(SubjectProgressTable.Name).
		Columns(progressColumns...).
		Values(p.UserID, p.Subject, p.TotalAttempted, p.TotalCorrect, p.AverageScore,
			weak, strong, nullTime(p.LastPracticeDate), p.PredictedScore, updated.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "subject"),
			entsql.ResolveWithNewValues(),
		))
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// GetProgress returns the stored progress row, or ErrNotFound.
func (s *Store) GetProgress(ctx context.Context, userID, subject string) (SubjectProgress, error) {
	query, args := build.Select(progressColumns...).
		From(build.Table(SubjectProgressTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("subject", subject))).
		Query()

	var (
		p            SubjectProgress
		weak, strong string
		last         sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.UserID, &p.Subject,
		&p.TotalAttempted, &p.TotalCorrect, &p.AverageScore, &weak, &strong,
		&last, &p.PredictedScore, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SubjectProgress{}, ErrNotFound
	}
	if err != nil {
		return SubjectProgress{}, fmt.Errorf("get progress: %w", err)
	}
	if err := json.Unmarshal([]byte(weak), &p.WeakTopics); err != nil {
		return SubjectProgress{}, fmt.Errorf("decode weak topics: %w", err)
	}
	if err := json.Unmarshal([]byte(strong), &p.StrongTopics); err != nil {
		return SubjectProgress{}, fmt.Errorf("decode strong topics: %w", err)
	}
	if last.Valid {
		p.LastPracticeDate = last.Time
	}
	return p, nil
}

func marshalTopics(topics []string) (string, error) {
	if topics == nil {
		topics = []string{}
	}
	b, err := json.Marshal(topics)
	if err != nil {
		return "", fmt.Errorf("encode topics: %w", err)
	}
	return string(b), nil
}
