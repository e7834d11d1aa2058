package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subject"
)

// SeedSet is one hand-written set in a seed file.
type SeedSet struct {
	Subject     string         `json:"subject"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	DeliveredAt time.Time      `json:"delivered_at"`
	Questions   []SeedQuestion `json:"questions"`
}

// SeedQuestion is a candidate carrying its own topic.
type SeedQuestion struct {
	Candidate
	Topic string `json:"topic"`
}

// ReadSeed decodes a seed file, a JSON array of sets.
func ReadSeed(r io.Reader) ([]SeedSet, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var sets []SeedSet
	if err := dec.Decode(&sets); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return sets, nil
}

// SeedResult is the outcome of one seed set.
type SeedResult struct {
	Subject      string
	DeliveryDate string
	SetID        string
	Questions    int
	Skipped      bool // a set already existed for the delivery date
}

// Seeder stores seed sets after running them through the candidate
// validators.
type Seeder struct {
	store      SetStore
	validators []Validator
	loc        *time.Location
	source     string
	now        func() time.Time
}

// NewSeeder creates a Seeder that checks questions with cfg.Validators and
// dates sets in cfg.Location.
func NewSeeder(st SetStore, cfg Config) *Seeder {
	loc := cfg.Location
	if loc == nil {
		loc = WAT
	}
	return &Seeder{store: st, validators: cfg.Validators, loc: loc, source: "seed", now: time.Now}
}

// Import validates every set before writing any of them, then stores each
// set whose subject has no set on that delivery date yet.
func (s *Seeder) Import(ctx context.Context, sets []SeedSet) ([]SeedResult, error) {
	const op = "questiongen.Seed"
	if len(sets) == 0 {
		return nil, apperr.InvalidInput(op, "seed contains no sets")
	}

	prepared := make([]store.QuestionSet, len(sets))
	questions := make([][]store.Question, len(sets))
	for i, ss := range sets {
		set, qs, err := s.prepare(ss)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidInput, op, fmt.Errorf("set %d: %w", i+1, err))
		}
		prepared[i], questions[i] = set, qs
	}

	out := make([]SeedResult, 0, len(sets))
	for i, set := range prepared {
		res := SeedResult{Subject: set.Subject, DeliveryDate: set.DeliveryDate}
		exists, err := s.store.HasSetOnDate(ctx, set.Subject, set.DeliveryDate)
		if err != nil {
			return out, apperr.Unavailable(op, err)
		}
		if exists {
			res.Skipped = true
			out = append(out, res)
			continue
		}
		created, err := s.store.CreateSet(ctx, set, questions[i])
		if err != nil {
			return out, apperr.Unavailable(op, err)
		}
		res.SetID = created.ID
		res.Questions = created.TotalQuestions
		out = append(out, res)
	}
	return out, nil
}

func (s *Seeder) prepare(ss SeedSet) (store.QuestionSet, []store.Question, error) {
	subj := subject.Canonical(ss.Subject)
	if subj == "" {
		return store.QuestionSet{}, nil, errors.New("subject is required")
	}
	if len(ss.Questions) == 0 {
		return store.QuestionSet{}, nil, fmt.Errorf("%s: no questions", subj)
	}
	delivered := ss.DeliveredAt
	if delivered.IsZero() {
		delivered = s.now()
	}
	local := delivered.In(s.loc)

	seen := dedupSet{}
	qs := make([]store.Question, 0, len(ss.Questions))
	for j, sq := range ss.Questions {
		c := sq.Candidate
		c.Topic = strings.TrimSpace(sq.Topic)
		if c.Topic == "" {
			c.Topic = "General"
		}
		c.CorrectAnswer = strings.ToUpper(strings.TrimSpace(c.CorrectAnswer))
		for _, v := range s.validators {
			if verr := v.Validate(&c); verr != nil {
				return store.QuestionSet{}, nil, fmt.Errorf("%s question %d: %w", subj, j+1, verr)
			}
		}
		if !seen.add(c.QuestionText) {
			return store.QuestionSet{}, nil, fmt.Errorf("%s question %d: duplicate question text", subj, j+1)
		}
		qs = append(qs, c.Question(subj, s.source))
	}

	set := store.QuestionSet{
		Subject:      subj,
		Title:        ss.Title,
		Description:  ss.Description,
		DeliveryDate: local.Format("2006-01-02"),
		DeliveredAt:  delivered,
		Source:       s.source,
	}
	if set.Title == "" {
		set.Title = setTitle(subj, local)
	}
	if set.Description == "" {
		set.Description = setDescription(subj, len(qs), local)
	}
	return set, qs, nil
}
