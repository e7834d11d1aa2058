// Package coach exposes the logical operations of the coaching core: set
// listing with entitlements, answer submission, progress and performance.
package coach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/entitlement"
	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/scoring"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subject"
	"github.com/abhisek/jambcoach/internal/subscription"
)

// DefaultStoreTimeout bounds each store call made by the service.
const DefaultStoreTimeout = 5 * time.Second

// Store is the persistence the service needs. *store.Store implements it.
type Store interface {
	entitlement.GrantStore
	scoring.QuestionSource
	scoring.AnswerLog
	subscription.RecordSource

	GetSet(ctx context.Context, id string) (store.QuestionSet, error)
	ListActiveSets(ctx context.Context, subject string) ([]store.QuestionSet, error)
	ListSubjects(ctx context.Context) ([]string, error)
	DeleteSet(ctx context.Context, userID, setID string) error
	ListQuestions(ctx context.Context, setID string) ([]store.Question, error)
	ListAnswers(ctx context.Context, userID, subject string) ([]store.Answer, error)
	UpsertProgress(ctx context.Context, p store.SubjectProgress) error
	AppendActivity(ctx context.Context, e store.ActivityEvent) error
}

// Options tune a Service.
type Options struct {
	StoreTimeout        time.Duration
	SubscriptionTimeout time.Duration
	Logger              *logger.Logger
	Now                 func() time.Time
}

// Service implements the coaching operations on top of a Store.
type Service struct {
	store     Store
	subs      *subscription.Resolver
	evaluator *entitlement.Evaluator
	scorer    *scoring.Scorer
	timeout   time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// New wires a Service.
func New(st Store, opts Options) *Service {
	log := logger.OrNop(opts.Logger)
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	subs := subscription.NewResolver(st, opts.SubscriptionTimeout, log)
	return &Service{
		store:     st,
		subs:      subs,
		evaluator: entitlement.NewEvaluator(st, subs, log),
		scorer:    scoring.New(st, st),
		timeout:   opts.StoreTimeout,
		log:       log.With("component", "coach"),
		now:       opts.Now,
	}
}

// Evaluator returns the entitlement evaluator used by the service.
func (s *Service) Evaluator() *entitlement.Evaluator { return s.evaluator }

func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// classify maps a store failure onto the error taxonomy. Errors that are
// already classified pass through.
func classify(op string, err error, what string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(op, "%s not found", what)
	default:
		return apperr.Unavailable(op, err)
	}
}

func requireUser(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.InvalidInput(op, "user id is required")
	}
	return nil
}

// GetAccessibleSets evaluates every active set of a subject for userID,
// newest first.
func (s *Service) GetAccessibleSets(ctx context.Context, userID, subj string) (entitlement.Result, error) {
	const op = "coach.GetAccessibleSets"
	if err := requireUser(op, userID); err != nil {
		return entitlement.Result{}, err
	}
	subj = subject.Canonical(subj)
	if subj == "" {
		return entitlement.Result{}, apperr.InvalidInput(op, "subject is required")
	}
	return s.evaluate(ctx, op, userID, subj)
}

func (s *Service) evaluate(ctx context.Context, op, userID, subj string) (entitlement.Result, error) {
	sctx, cancel := s.bounded(ctx)
	sets, err := s.store.ListActiveSets(sctx, subj)
	cancel()
	if err != nil {
		return entitlement.Result{}, classify(op, err, "subject")
	}

	ectx, cancel := s.bounded(ctx)
	defer cancel()
	return s.evaluator.Evaluate(ectx, userID, subj, sets)
}

// access returns the decision for one active set. Missing or inactive sets
// are NotFound.
func (s *Service) access(ctx context.Context, op, userID, setID string) (entitlement.SetAccess, error) {
	sctx, cancel := s.bounded(ctx)
	set, err := s.store.GetSet(sctx, setID)
	cancel()
	if err != nil {
		return entitlement.SetAccess{}, classify(op, err, "question set "+setID)
	}
	if !set.IsActive {
		return entitlement.SetAccess{}, apperr.NotFound(op, "question set %s not found", setID)
	}

	res, err := s.evaluate(ctx, op, userID, set.Subject)
	if err != nil {
		return entitlement.SetAccess{}, err
	}
	sa, ok := res.Lookup(setID)
	if !ok {
		// Deactivated concurrently.
		return entitlement.SetAccess{}, apperr.NotFound(op, "question set %s not found", setID)
	}
	return sa, nil
}

// SubjectStatus is one row of the subject overview.
type SubjectStatus struct {
	Subject string
	Status  entitlement.Overall
	Counts  entitlement.Counts
}

// SubjectOverview evaluates every core subject plus any other subject with
// content, in display order.
func (s *Service) SubjectOverview(ctx context.Context, userID string) ([]SubjectStatus, error) {
	const op = "coach.SubjectOverview"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	sctx, cancel := s.bounded(ctx)
	stored, err := s.store.ListSubjects(sctx)
	cancel()
	if err != nil {
		return nil, classify(op, err, "subjects")
	}

	seen := map[string]bool{}
	var names []string
	for _, n := range append(append([]string(nil), subject.All...), stored...) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	subject.Sort(names)

	out := make([]SubjectStatus, 0, len(names))
	for _, n := range names {
		res, err := s.evaluate(ctx, op, userID, n)
		if err != nil {
			return nil, err
		}
		out = append(out, SubjectStatus{Subject: n, Status: res.Status, Counts: res.Counts})
	}
	return out, nil
}

// SubscriptionStatus resolves the user's billing state.
func (s *Service) SubscriptionStatus(ctx context.Context, userID string) (subscription.Status, error) {
	if err := requireUser("coach.SubscriptionStatus", userID); err != nil {
		return subscription.Status{}, err
	}
	return s.subs.Resolve(ctx, userID), nil
}
