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

// RecordSubscription appends a billing record. Records are never updated;
// the latest one per user is authoritative.
func (s *Store) RecordSubscription(ctx context.Context, rec SubscriptionRecord) (SubscriptionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()

	seq, err := s.seq.Next(ctx, s.db)
	if err != nil {
		return SubscriptionRecord{}, err
	}
	rec.Sequence = seq

	_, err = exec(ctx, s.db, build.Insert(SubscriptionsTable.Name).
		Columns("id", "sequence", "user_id", "status", "plan_type", "price_id",
			"period_start", "period_end", "created_at").
		Values(rec.ID, rec.Sequence, rec.UserID, rec.Status, rec.PlanType, rec.PriceID,
			nullTime(rec.PeriodStart), nullTime(rec.PeriodEnd), rec.CreatedAt))
	if err != nil {
		return SubscriptionRecord{}, fmt.Errorf("insert subscription: %w", err)
	}
	return rec, nil
}

// LatestSubscription returns the most recent billing record of a user, or
// ErrNotFound when there is none.
func (s *Store) LatestSubscription(ctx context.Context, userID string) (SubscriptionRecord, error) {
	query, args := build.Select("id", "sequence", "user_id", "status", "plan_type",
		"price_id", "period_start", "period_end", "created_at").
		From(build.Table(SubscriptionsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var (
		rec        SubscriptionRecord
		start, end sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.Sequence,
		&rec.UserID, &rec.Status, &rec.PlanType, &rec.PriceID, &start, &end, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SubscriptionRecord{}, ErrNotFound
	}
	if err != nil {
		return SubscriptionRecord{}, fmt.Errorf("latest subscription: %w", err)
	}
	rec.PeriodStart = start.Time
	rec.PeriodEnd = end.Time
	return rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
