package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sequenceCounter hands out one global, strictly increasing number shared by
// question sets, answers, billing records and events. Set sequences break
// anchor ties between sets delivered at the same instant; answer sequences
// give a total order that timestamps alone cannot.
//
// Raw SQL because the builder has no atomic counter. The counter is advanced
// on whatever querier the caller holds, so a transaction that allocates a
// sequence and then rolls back releases nothing: the number is simply never
// observed.
type sequenceCounter struct{}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sequenceCounter) Next(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
