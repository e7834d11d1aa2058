// Package entitlement decides which question sets of a subject a learner may
// open: the free anchor set, previously granted sets, or everything under
// an active subscription.
package entitlement

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/store"
)

// Reason explains a per-set access decision.
type Reason string

const (
	ReasonSubscription         Reason = "subscription"
	ReasonFreeFirstSet         Reason = "free_first_set"
	ReasonPreviouslyGranted    Reason = "previously_granted"
	ReasonSubscriptionRequired Reason = "subscription_required"
)

// Grant origins persisted with each grant.
const (
	OriginFreeFirstSet = "free_first_set"
	OriginManual       = "manual"
)

// Overall is the subject-level access status shown next to the set list.
type Overall string

const (
	OverallNoContent Overall = "no_content"
	OverallPremium   Overall = "premium"
	OverallFree      Overall = "free"
	// OverallExpired means nothing is accessible. An unsubscribed user always
	// has the anchor, so it only appears when the evaluator is given
	// pre-filtered input.
	OverallExpired Overall = "expired"
)

// SetAccess is the decision for one set.
type SetAccess struct {
	Set       store.QuestionSet
	CanAccess bool
	Reason    Reason
	IsAnchor  bool
}

// Counts summarises a Result.
type Counts struct {
	Total      int
	Accessible int
	Locked     int
}

// Result is the evaluation of one subject. Sets are newest first.
type Result struct {
	Subject string
	Status  Overall
	Sets    []SetAccess
	Counts  Counts
}

// Lookup returns the decision for setID.
func (r Result) Lookup(setID string) (SetAccess, bool) {
	for _, sa := range r.Sets {
		if sa.Set.ID == setID {
			return sa, true
		}
	}
	return SetAccess{}, false
}

// GrantStore is the persisted grant contract. *store.Store implements it.
type GrantStore interface {
	Grant(ctx context.Context, userID, setID, origin string) (bool, error)
	Revoke(ctx context.Context, userID, setID string) error
	GrantedSets(ctx context.Context, userID string, setIDs []string) (map[string]string, error)
}

// SubscriptionChecker reports whether a user holds an active paid
// entitlement. Implementations fail closed.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, userID string) bool
}

// Evaluator computes per-set access and issues the anchor grant.
type Evaluator struct {
	grants GrantStore
	subs   SubscriptionChecker
	log    *logger.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(grants GrantStore, subs SubscriptionChecker, log *logger.Logger) *Evaluator {
	return &Evaluator{grants: grants, subs: subs, log: logger.OrNop(log).With("component", "entitlement")}
}

// Anchor returns the index of the oldest set: earliest DeliveredAt, ties
// broken by lower Sequence. It returns -1 for an empty list. Input order
// does not matter.
func Anchor(sets []store.QuestionSet) int {
	idx := -1
	for i, s := range sets {
		if idx < 0 || older(s, sets[idx]) {
			idx = i
		}
	}
	return idx
}

func older(a, b store.QuestionSet) bool {
	if !a.DeliveredAt.Equal(b.DeliveredAt) {
		return a.DeliveredAt.Before(b.DeliveredAt)
	}
	return a.Sequence < b.Sequence
}

// Evaluate decides access for every set of a subject. sets may arrive in
// any order; the result is newest first. When the user is not subscribed
// and holds no grant for the anchor set, one is created. Grant store
// failures are returned as DependencyUnavailable.
func (e *Evaluator) Evaluate(ctx context.Context, userID, subject string, sets []store.QuestionSet) (Result, error) {
	const op = "entitlement.Evaluate"

	res := Result{Subject: subject}
	if len(sets) == 0 {
		res.Status = OverallNoContent
		res.Sets = []SetAccess{}
		return res, nil
	}

	ordered := append([]store.QuestionSet(nil), sets...)
	sort.SliceStable(ordered, func(i, j int) bool { return older(ordered[j], ordered[i]) })
	// Newest first, so the anchor is the last element.
	anchor := len(ordered) - 1

	res.Sets = make([]SetAccess, len(ordered))
	for i, s := range ordered {
		res.Sets[i] = SetAccess{Set: s, IsAnchor: i == anchor}
	}

	if e.subs.IsActive(ctx, userID) {
		for i := range res.Sets {
			res.Sets[i].CanAccess = true
			res.Sets[i].Reason = ReasonSubscription
		}
		res.Status = OverallPremium
		res.Counts = count(res.Sets)
		return res, nil
	}

	ids := make([]string, len(ordered))
	for i, s := range ordered {
		ids[i] = s.ID
	}
	granted, err := e.grants.GrantedSets(ctx, userID, ids)
	if err != nil {
		return Result{}, apperr.Unavailable(op, err)
	}

	for i := range res.Sets {
		sa := &res.Sets[i]
		origin, ok := granted[sa.Set.ID]
		switch {
		case sa.IsAnchor && !ok:
			created, err := e.grants.Grant(ctx, userID, sa.Set.ID, OriginFreeFirstSet)
			if err != nil {
				return Result{}, apperr.Unavailable(op, fmt.Errorf("issue anchor grant: %w", err))
			}
			if created {
				e.log.Info("issued free first set", "user_id", userID, "subject", subject, "set_id", sa.Set.ID)
			}
			sa.CanAccess, sa.Reason = true, ReasonFreeFirstSet
		case sa.IsAnchor && origin == OriginFreeFirstSet:
			sa.CanAccess, sa.Reason = true, ReasonFreeFirstSet
		case ok:
			sa.CanAccess, sa.Reason = true, ReasonPreviouslyGranted
		default:
			sa.CanAccess, sa.Reason = false, ReasonSubscriptionRequired
		}
	}

	res.Counts = count(res.Sets)
	if res.Counts.Accessible > 0 {
		res.Status = OverallFree
	} else {
		res.Status = OverallExpired
	}
	return res, nil
}

// GrantManual records an operator-issued grant.
func (e *Evaluator) GrantManual(ctx context.Context, userID, setID string) (bool, error) {
	created, err := e.grants.Grant(ctx, userID, setID, OriginManual)
	if err != nil {
		return false, apperr.Unavailable("entitlement.GrantManual", err)
	}
	return created, nil
}

// Revoke removes the user's grant for a set. It is used only when the set is
// deleted; the evaluator itself never revokes.
func (e *Evaluator) Revoke(ctx context.Context, userID, setID string) error {
	if err := e.grants.Revoke(ctx, userID, setID); err != nil {
		return apperr.Unavailable("entitlement.Revoke", err)
	}
	return nil
}

func count(sets []SetAccess) Counts {
	c := Counts{Total: len(sets)}
	for _, sa := range sets {
		if sa.CanAccess {
			c.Accessible++
		}
	}
	c.Locked = c.Total - c.Accessible
	return c
}
