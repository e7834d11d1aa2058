package questiongen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/store"
)

// SetStore persists generated sets. *store.Store implements it.
type SetStore interface {
	HasSetOnDate(ctx context.Context, subject, date string) (bool, error)
	CreateSet(ctx context.Context, set store.QuestionSet, questions []store.Question) (store.QuestionSet, error)
}

// SubjectResult is the outcome of one subject in a run.
type SubjectResult struct {
	Subject        string
	SetID          string
	Questions      int
	Rejected       int
	Topics         []string
	FallbackTopics bool
	Skipped        bool  // a set already existed for the delivery date
	Err            error // GenerationFailed or DependencyUnavailable
}

// Report summarises one run.
type Report struct {
	DeliveryDate string
	StartedAt    time.Time
	Duration     time.Duration
	Results      []SubjectResult
}

// Generated returns the results that produced a set.
func (r Report) Generated() []SubjectResult {
	var out []SubjectResult
	for _, res := range r.Results {
		if res.SetID != "" {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results that ended in an error.
func (r Report) Failed() []SubjectResult {
	var out []SubjectResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Job runs one generation cycle across all configured subjects.
type Job struct {
	gen    *Generator
	store  SetStore
	config Config
	log    *logger.Logger
	now    func() time.Time
}

// NewJob creates a Job.
func NewJob(gen *Generator, st SetStore, cfg Config, log *logger.Logger) *Job {
	if cfg.Location == nil {
		cfg.Location = WAT
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Job{gen: gen, store: st, config: cfg, log: logger.OrNop(log).With("component", "generation-job"), now: time.Now}
}

// Run generates one set per subject for today's delivery date. A subject
// failing does not stop the others; its error is recorded in the report.
// Run returns an error only when ctx ends.
func (j *Job) Run(ctx context.Context) (Report, error) {
	start := j.now()
	local := start.In(j.config.Location)
	rep := Report{
		DeliveryDate: local.Format("2006-01-02"),
		StartedAt:    start,
		Results:      make([]SubjectResult, len(j.config.Subjects)),
	}
	j.log.Info("generation run started", "delivery_date", rep.DeliveryDate, "subjects", len(j.config.Subjects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)
	var mu sync.Mutex
	for i, subj := range j.config.Subjects {
		g.Go(func() error {
			res := j.runSubject(gctx, subj, local)
			mu.Lock()
			rep.Results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	rep.Duration = j.now().Sub(start)
	j.log.Info("generation run finished",
		"delivery_date", rep.DeliveryDate,
		"generated", len(rep.Generated()),
		"failed", len(rep.Failed()),
		"duration", rep.Duration)
	return rep, ctx.Err()
}

func (j *Job) runSubject(ctx context.Context, subj string, local time.Time) SubjectResult {
	const op = "questiongen.Job"
	res := SubjectResult{Subject: subj}
	date := local.Format("2006-01-02")
	log := j.log.With("subject", subj)

	exists, err := j.store.HasSetOnDate(ctx, subj, date)
	if err != nil {
		res.Err = apperr.Unavailable(op, err)
		log.Error("checking existing sets failed", "error", err)
		return res
	}
	if exists {
		res.Skipped = true
		log.Info("set already exists for delivery date", "delivery_date", date)
		return res
	}

	res.Topics, res.FallbackTopics = j.gen.Topics(ctx, subj)
	target := j.config.QuestionsPerSubject
	perTopic := (target + len(res.Topics) - 1) / len(res.Topics)

	var (
		accepted []Candidate
		prior    []string
		seen     = dedupSet{}
		lastErr  error
	)
	for _, topic := range res.Topics {
		if err := ctx.Err(); err != nil {
			res.Err = apperr.GenerationFailed(op, err)
			return res
		}
		batch, err := j.gen.Questions(ctx, subj, topic, perTopic, prior, seen)
		if err != nil {
			lastErr = err
			log.Warn("topic batch failed", "topic", topic, "error", err)
			continue
		}
		res.Rejected += len(batch.Rejected)
		for _, verr := range batch.Rejected {
			log.Debug("question rejected", "topic", topic, "reason", verr.Error())
		}
		for _, c := range batch.Accepted {
			accepted = append(accepted, c)
			prior = append(prior, c.QuestionText)
		}
	}

	if len(accepted) > target {
		accepted = accepted[:target]
	}
	if len(accepted) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no valid questions generated")
		}
		res.Err = apperr.GenerationFailed(op, fmt.Errorf("%s: %w", subj, lastErr))
		log.Error("subject skipped this cycle", "error", lastErr)
		return res
	}

	questions := make([]store.Question, len(accepted))
	for i, c := range accepted {
		questions[i] = c.Question(subj, j.config.Source)
	}
	set, err := j.store.CreateSet(ctx, store.QuestionSet{
		Subject:      subj,
		Title:        setTitle(subj, local),
		Description:  setDescription(subj, len(questions), local),
		DeliveryDate: date,
		DeliveredAt:  local,
		Source:       j.config.Source,
	}, questions)
	if err != nil {
		res.Err = apperr.Unavailable(op, err)
		log.Error("saving question set failed", "error", err)
		return res
	}

	res.SetID = set.ID
	res.Questions = len(questions)
	log.Info("question set created", "set_id", set.ID, "questions", res.Questions, "rejected", res.Rejected)
	return res
}

func setTitle(subj string, local time.Time) string {
	return fmt.Sprintf("%s Questions - %s", subj, local.Format("2 January 2006"))
}

func setDescription(subj string, n int, local time.Time) string {
	return fmt.Sprintf("Fresh set of %d JAMB %s questions delivered on %s", n, subj, local.Format("02/01/2006"))
}
