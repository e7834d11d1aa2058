// Package scoring checks submitted answers against the key and records them.
package scoring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/store"
)

// Options are the valid option identifiers, in order.
var Options = [4]string{"A", "B", "C", "D"}

// Submission is one answer as received from a learner.
type Submission struct {
	UserID           string
	QuestionID       string
	SelectedOption   string
	TimeSpentSeconds int
	AnsweredAt       time.Time // zero means now
}

// Outcome is the scored result of a submission.
type Outcome struct {
	AnswerID      string
	IsCorrect     bool
	CorrectOption string
	Explanation   string
	Stats         store.QuestionStats
}

// QuestionSource loads active questions.
type QuestionSource interface {
	GetQuestion(ctx context.Context, id string) (store.Question, error)
}

// AnswerLog appends an answer and folds it into the question's running
// statistics atomically.
type AnswerLog interface {
	AppendAnswer(ctx context.Context, a store.Answer) (store.Answer, store.QuestionStats, error)
}

// Scorer implements the answer scoring pipeline. Callers that need to
// check access between lookup and recording use Validate, Lookup and Record
// separately; Submit runs all three.
type Scorer struct {
	questions QuestionSource
	answers   AnswerLog
	now       func() time.Time
}

// New creates a Scorer. *store.Store satisfies both interfaces.
func New(questions QuestionSource, answers AnswerLog) *Scorer {
	return &Scorer{questions: questions, answers: answers, now: time.Now}
}

// NormalizeOption upper-cases and trims an option identifier, reporting
// whether it is one of A-D.
func NormalizeOption(opt string) (string, bool) {
	opt = strings.ToUpper(strings.TrimSpace(opt))
	for _, o := range Options {
		if opt == o {
			return opt, true
		}
	}
	return opt, false
}

// OptionIndex maps A-D to 0-3, or -1.
func OptionIndex(opt string) int {
	opt, _ = NormalizeOption(opt)
	for i, o := range Options {
		if opt == o {
			return i
		}
	}
	return -1
}

// Validate checks the fields of sub and returns it with the option
// normalized. Nothing is read or written.
func (s *Scorer) Validate(sub Submission) (Submission, error) {
	const op = "scoring.Validate"
	if strings.TrimSpace(sub.UserID) == "" {
		return sub, apperr.InvalidInput(op, "user id is required")
	}
	if strings.TrimSpace(sub.QuestionID) == "" {
		return sub, apperr.InvalidInput(op, "question id is required")
	}
	opt, ok := NormalizeOption(sub.SelectedOption)
	if !ok {
		return sub, apperr.InvalidInput(op, "selected option %q is not one of A, B, C, D", sub.SelectedOption)
	}
	if sub.TimeSpentSeconds < 0 {
		return sub, apperr.InvalidInput(op, "time spent must not be negative")
	}
	sub.SelectedOption = opt
	return sub, nil
}

// Lookup loads the active question a submission refers to.
func (s *Scorer) Lookup(ctx context.Context, questionID string) (store.Question, error) {
	const op = "scoring.Lookup"
	q, err := s.questions.GetQuestion(ctx, questionID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Question{}, apperr.NotFound(op, "question %s not found", questionID)
	}
	if err != nil {
		return store.Question{}, apperr.Unavailable(op, err)
	}
	return q, nil
}

// Record scores a validated submission against q and persists it. The
// answer row and the statistics update land together or not at all.
func (s *Scorer) Record(ctx context.Context, sub Submission, q store.Question) (Outcome, error) {
	const op = "scoring.Record"
	correct, _ := NormalizeOption(q.CorrectOption)
	isCorrect := sub.SelectedOption == correct

	at := sub.AnsweredAt
	if at.IsZero() {
		at = s.now()
	}
	saved, stats, err := s.answers.AppendAnswer(ctx, store.Answer{
		UserID:           sub.UserID,
		QuestionID:       q.ID,
		SetID:            q.SetID,
		Subject:          q.Subject,
		Topic:            q.Topic,
		SelectedOption:   sub.SelectedOption,
		IsCorrect:        isCorrect,
		TimeSpentSeconds: sub.TimeSpentSeconds,
		AnsweredAt:       at,
	})
	if errors.Is(err, store.ErrNotFound) {
		// Deactivated between lookup and write.
		return Outcome{}, apperr.NotFound(op, "question %s not found", q.ID)
	}
	if err != nil {
		return Outcome{}, apperr.Unavailable(op, err)
	}
	return Outcome{
		AnswerID:      saved.ID,
		IsCorrect:     isCorrect,
		CorrectOption: correct,
		Explanation:   q.Explanation,
		Stats:         stats,
	}, nil
}

// Submit validates, looks up and records a submission.
func (s *Scorer) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	sub, err := s.Validate(sub)
	if err != nil {
		return Outcome{}, err
	}
	q, err := s.Lookup(ctx, sub.QuestionID)
	if err != nil {
		return Outcome{}, err
	}
	return s.Record(ctx, sub, q)
}
