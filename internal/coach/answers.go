package coach

import (
	"context"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/progress"
	"github.com/abhisek/jambcoach/internal/scoring"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subject"
)

// SubmitAnswer scores one answer. The question's set must be active and
// accessible to the user.
func (s *Service) SubmitAnswer(ctx context.Context, sub scoring.Submission) (scoring.Outcome, error) {
	const op = "coach.SubmitAnswer"
	sub, err := s.scorer.Validate(sub)
	if err != nil {
		return scoring.Outcome{}, err
	}

	lctx, cancel := s.bounded(ctx)
	q, err := s.scorer.Lookup(lctx, sub.QuestionID)
	cancel()
	if err != nil {
		return scoring.Outcome{}, err
	}

	sa, err := s.access(ctx, op, sub.UserID, q.SetID)
	if apperr.Is(err, apperr.KindNotFound) {
		return scoring.Outcome{}, apperr.NotFound(op, "question %s not found", q.ID)
	}
	if err != nil {
		return scoring.Outcome{}, err
	}
	if !sa.CanAccess {
		return scoring.Outcome{}, apperr.AccessDenied(op, "question set %s requires a subscription", q.SetID)
	}

	if sub.AnsweredAt.IsZero() {
		sub.AnsweredAt = s.now()
	}
	rctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := s.scorer.Record(rctx, sub, q)
	if err != nil {
		return scoring.Outcome{}, err
	}

	s.record(ctx, store.ActivityEvent{
		UserID:       sub.UserID,
		Action:       "answer_submitted",
		ResourceType: "question",
		ResourceID:   q.ID,
		Metadata: map[string]any{
			"set_id":     q.SetID,
			"subject":    q.Subject,
			"is_correct": out.IsCorrect,
			"time_spent": sub.TimeSpentSeconds,
		},
	})
	return out, nil
}

// GetProgress recomputes the user's standing in a subject from the full
// answer log and stores it before returning it.
func (s *Service) GetProgress(ctx context.Context, userID, subj string) (store.SubjectProgress, error) {
	const op = "coach.GetProgress"
	if err := requireUser(op, userID); err != nil {
		return store.SubjectProgress{}, err
	}
	subj = subject.Canonical(subj)
	if subj == "" {
		return store.SubjectProgress{}, apperr.InvalidInput(op, "subject is required")
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	answers, err := s.store.ListAnswers(ctx, userID, subj)
	if err != nil {
		return store.SubjectProgress{}, classify(op, err, "answers")
	}
	p := progress.Recompute(userID, subj, answers)
	if err := s.store.UpsertProgress(ctx, p); err != nil {
		return store.SubjectProgress{}, classify(op, err, "progress")
	}
	return p, nil
}

// AnalyzePerformance builds the 30-day performance report and refreshes the
// stored progress of every subject that appears in it.
func (s *Service) AnalyzePerformance(ctx context.Context, userID string) (progress.Report, error) {
	const op = "coach.AnalyzePerformance"
	if err := requireUser(op, userID); err != nil {
		return progress.Report{}, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	answers, err := s.store.ListAnswers(ctx, userID, "")
	if err != nil {
		return progress.Report{}, classify(op, err, "answers")
	}
	now := s.now()
	rep := progress.Analyze(userID, answers, now)
	for _, sp := range rep.Subjects {
		p := progress.Recompute(userID, sp.Subject, answers)
		if err := s.store.UpsertProgress(ctx, p); err != nil {
			return progress.Report{}, classify(op, err, "progress")
		}
	}
	return rep, nil
}
