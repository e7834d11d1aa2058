package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// HasGrant reports whether user holds a grant for set.
func (s *Store) HasGrant(ctx context.Context, userID, setID string) (bool, error) {
	query, args := build.Select(entsql.Count("*")).
		From(build.Table(AccessGrantsTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_set_id", setID))).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("has grant: %w", err)
	}
	return n > 0, nil
}

// Grant creates a grant if none exists. Concurrent calls for the same pair
// leave exactly one row; created reports whether this call inserted it.
func (s *Store) Grant(ctx context.Context, userID, setID, origin string) (created bool, err error) {
	res, err := exec(ctx, s.db, build.Insert(AccessGrantsTable.Name).
		Columns("user_id", "question_set_id", "can_access", "origin", "created_at").
		Values(userID, setID, true, origin, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "question_set_id"), entsql.DoNothing()))
	if err != nil {
		return false, fmt.Errorf("insert grant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert grant: %w", err)
	}
	return n > 0, nil
}

// Revoke removes a grant. Revoking an absent grant is not an error.
func (s *Store) Revoke(ctx context.Context, userID, setID string) error {
	return revokeGrant(ctx, s.db, userID, setID)
}

func revokeGrant(ctx context.Context, q querier, userID, setID string) error {
	_, err := exec(ctx, q, build.Delete(AccessGrantsTable.Name).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_set_id", setID))))
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	return nil
}

// GrantedSets returns, for the given sets, the origin of each grant the
// user holds. Sets without a grant are absent from the map.
func (s *Store) GrantedSets(ctx context.Context, userID string, setIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(setIDs))
	if len(setIDs) == 0 {
		return out, nil
	}
	ids := make([]any, len(setIDs))
	for i, id := range setIDs {
		ids[i] = id
	}

	query, args := build.Select("question_set_id", "origin").
		From(build.Table(AccessGrantsTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("question_set_id", ids...))).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var setID, origin string
		if err := rows.Scan(&setID, &origin); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out[setID] = origin
	}
	return out, rows.Err()
}

// ListGrants returns every grant a user holds, oldest first.
func (s *Store) ListGrants(ctx context.Context, userID string) ([]Grant, error) {
	query, args := build.Select("user_id", "question_set_id", "origin", "created_at").
		From(build.Table(AccessGrantsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.UserID, &g.SetID, &g.Origin, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Stored timestamps do not sort lexically; order in Go.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
