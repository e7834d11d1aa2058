package coach

import (
	"context"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/entitlement"
	"github.com/abhisek/jambcoach/internal/store"
)

// PublicQuestion is a question as shown to a learner, without the key.
type PublicQuestion struct {
	ID         string
	Topic      string
	Difficulty int
	Text       string
	Options    [4]string
	Position   int
}

// SetQuestions is an opened question set.
type SetQuestions struct {
	Access    entitlement.SetAccess
	Questions []PublicQuestion
}

// GetSetQuestions opens a set for userID. Locked sets are AccessDenied.
func (s *Service) GetSetQuestions(ctx context.Context, userID, setID string) (SetQuestions, error) {
	const op = "coach.GetSetQuestions"
	if err := requireUser(op, userID); err != nil {
		return SetQuestions{}, err
	}
	sa, err := s.access(ctx, op, userID, setID)
	if err != nil {
		return SetQuestions{}, err
	}
	if !sa.CanAccess {
		return SetQuestions{}, apperr.AccessDenied(op, "question set %s requires a subscription", setID)
	}

	qctx, cancel := s.bounded(ctx)
	defer cancel()
	qs, err := s.store.ListQuestions(qctx, setID)
	if err != nil {
		return SetQuestions{}, classify(op, err, "question set "+setID)
	}
	out := SetQuestions{Access: sa, Questions: make([]PublicQuestion, len(qs))}
	for i, q := range qs {
		out.Questions[i] = redact(q)
	}
	return out, nil
}

func redact(q store.Question) PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		Text:       q.Text,
		Options:    q.Options,
		Position:   q.Position,
	}
}

// DeleteSet soft-deletes a set and revokes userID's grant for it.
func (s *Service) DeleteSet(ctx context.Context, userID, setID string) error {
	const op = "coach.DeleteSet"
	if err := requireUser(op, userID); err != nil {
		return err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.store.DeleteSet(ctx, userID, setID); err != nil {
		return classify(op, err, "question set "+setID)
	}
	s.record(ctx, store.ActivityEvent{
		UserID: userID, Action: "set_deleted", ResourceType: "question_set", ResourceID: setID,
	})
	s.log.Info("question set deleted", "user_id", userID, "set_id", setID)
	return nil
}

// record writes an audit entry. Failures are logged, not returned.
func (s *Service) record(ctx context.Context, e store.ActivityEvent) {
	if err := s.store.AppendActivity(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("activity log write failed", "user_id", e.UserID, "action", e.Action, "error", err)
	}
}
