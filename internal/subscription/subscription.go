// Package subscription resolves whether a user's billing record currently
// entitles them to every question set.
package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/store"
)

// Billing record statuses. Only StatusActive entitles; the others are
// stored verbatim from the billing provider.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
	StatusExpired  = "expired"
)

// DefaultTimeout bounds a single billing lookup.
const DefaultTimeout = 2 * time.Second

// State is the resolved subscription state.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive" // a record exists but is not active
	StateNone     State = "none"     // no billing record at all
	StateUnknown  State = "unknown"  // lookup failed or timed out
)

// Status is the outcome of a lookup.
type Status struct {
	State  State
	Record *store.SubscriptionRecord // latest record, when one was found
	Err    error                     // cause when State is StateUnknown
}

// Active reports whether the user is subscribed. Unknown is not active.
func (s Status) Active() bool {
	return s.State == StateActive
}

// RecordSource supplies the latest billing record of a user, returning
// store.ErrNotFound when there is none. *store.Store implements it.
type RecordSource interface {
	LatestSubscription(ctx context.Context, userID string) (store.SubscriptionRecord, error)
}

// Resolver implements the subscription lookup with a bounded timeout.
type Resolver struct {
	src     RecordSource
	timeout time.Duration
	log     *logger.Logger
}

// NewResolver creates a Resolver. A non-positive timeout uses DefaultTimeout.
func NewResolver(src RecordSource, timeout time.Duration, log *logger.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{src: src, timeout: timeout, log: logger.OrNop(log).With("component", "subscription")}
}

// Resolve looks up the user's most recent billing record. It never returns
// an error: failures resolve to StateUnknown, which callers treat as not
// subscribed.
func (r *Resolver) Resolve(ctx context.Context, userID string) Status {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		rec store.SubscriptionRecord
		err error
	}
	// The source may ignore ctx; the select keeps the timeout binding anyway.
	done := make(chan result, 1)
	go func() {
		rec, err := r.src.LatestSubscription(ctx, userID)
		done <- result{rec, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	switch {
	case errors.Is(res.err, store.ErrNotFound):
		return Status{State: StateNone}
	case res.err != nil:
		r.log.Warn("subscription lookup failed, treating as inactive", "user_id", userID, "error", res.err)
		return Status{State: StateUnknown, Err: res.err}
	case res.rec.Status == StatusActive:
		return Status{State: StateActive, Record: &res.rec}
	default:
		return Status{State: StateInactive, Record: &res.rec}
	}
}

// IsActive is Resolve(ctx, userID).Active().
func (r *Resolver) IsActive(ctx context.Context, userID string) bool {
	return r.Resolve(ctx, userID).Active()
}
