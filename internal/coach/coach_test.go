package coach

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/entitlement"
	"github.com/abhisek/jambcoach/internal/scoring"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subscription"
)

var (
	day1 = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	now  = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	st   *store.Store
	svc  *Service
	sets []store.QuestionSet // oldest first
	qs   [][]store.Question
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{st: st, svc: New(st, Options{Now: func() time.Time { return now }})}
	for _, d := range []int{0, 3, 6} {
		qs := []store.Question{
			{Topic: "Algebra", Difficulty: 1, Text: "2x=4, x?", Options: [4]string{"1", "2", "3", "4"}, CorrectOption: "B", Explanation: "x=2"},
			{Topic: "Algebra", Difficulty: 2, Text: "x+1=4, x?", Options: [4]string{"1", "2", "3", "4"}, CorrectOption: "C", Explanation: "x=3"},
			{Topic: "Geometry", Difficulty: 3, Text: "Angles in a triangle?", Options: [4]string{"90", "180", "270", "360"}, CorrectOption: "B", Explanation: "180"},
		}
		set, err := st.CreateSet(context.Background(), store.QuestionSet{
			Subject:      "Mathematics",
			Title:        "Mathematics practice",
			DeliveryDate: day1.AddDate(0, 0, d).Format("2006-01-02"),
			DeliveredAt:  day1.AddDate(0, 0, d),
		}, qs)
		require.NoError(t, err)
		f.sets = append(f.sets, set)
		f.qs = append(f.qs, qs)
	}
	return f
}

func (f *fixture) subscribe(t *testing.T, userID, status string) {
	t.Helper()
	_, err := f.st.RecordSubscription(context.Background(), store.SubscriptionRecord{
		UserID: userID, Status: status, PlanType: "monthly",
	})
	require.NoError(t, err)
}

func TestGetAccessibleSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.GetAccessibleSets(ctx, "u1", "mathematics")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", res.Subject)
	require.Len(t, res.Sets, 3)
	assert.Equal(t, f.sets[0].ID, res.Sets[2].Set.ID)
	assert.Equal(t, entitlement.ReasonFreeFirstSet, res.Sets[2].Reason)
	assert.Equal(t, entitlement.ReasonSubscriptionRequired, res.Sets[0].Reason)

	f.subscribe(t, "u1", subscription.StatusActive)
	res, err = f.svc.GetAccessibleSets(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, entitlement.OverallPremium, res.Status)
	assert.Equal(t, 3, res.Counts.Accessible)

	res, err = f.svc.GetAccessibleSets(ctx, "u1", "Physics")
	require.NoError(t, err)
	assert.Equal(t, entitlement.OverallNoContent, res.Status)

	_, err = f.svc.GetAccessibleSets(ctx, "", "Physics")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestGetSetQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.svc.GetSetQuestions(ctx, "u1", f.sets[0].ID)
	require.NoError(t, err)
	require.Len(t, open.Questions, 3)
	assert.Equal(t, 1, open.Questions[0].Position)
	assert.True(t, open.Access.IsAnchor)

	_, err = f.svc.GetSetQuestions(ctx, "u1", f.sets[2].ID)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	_, err = f.svc.GetSetQuestions(ctx, "u1", "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSubmitAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.qs[0][0]

	out, err := f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: q.ID, SelectedOption: "b", TimeSpentSeconds: 15})
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)
	assert.Equal(t, "B", out.CorrectOption)
	assert.Equal(t, "x=2", out.Explanation)
	assert.Equal(t, int64(1), out.Stats.TimesAnswered)

	activity, err := f.st.ListActivity(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "answer_submitted", activity[0].Action)
	assert.Equal(t, true, activity[0].Metadata["is_correct"])
}

func TestSubmitAnswer_LockedSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locked := f.qs[2][0]

	_, err := f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: locked.ID, SelectedOption: "B"})
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	answers, err := f.st.ListAnswers(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, answers)
	q, err := f.st.GetQuestion(ctx, locked.ID)
	require.NoError(t, err)
	assert.Zero(t, q.TimesAnswered)

	f.subscribe(t, "u1", subscription.StatusActive)
	_, err = f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: locked.ID, SelectedOption: "B"})
	assert.NoError(t, err)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name string
		sub  scoring.Submission
		want apperr.Kind
	}{
		{"unknown question", scoring.Submission{UserID: "u1", QuestionID: "nope", SelectedOption: "A"}, apperr.KindNotFound},
		{"bad option", scoring.Submission{UserID: "u1", QuestionID: f.qs[0][0].ID, SelectedOption: "Z"}, apperr.KindInvalidInput},
		{"no user", scoring.Submission{QuestionID: f.qs[0][0].ID, SelectedOption: "A"}, apperr.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitAnswer(ctx, tt.sub)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestDeleteSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.subscribe(t, "u1", subscription.StatusActive)
	target := f.sets[1]
	_, err := f.st.Grant(ctx, "u1", target.ID, entitlement.OriginManual)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSet(ctx, "u1", target.ID))

	ok, err := f.st.HasGrant(ctx, "u1", target.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := f.svc.GetAccessibleSets(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	_, found := res.Lookup(target.ID)
	assert.False(t, found)

	err = f.svc.DeleteSet(ctx, "u1", target.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Questions of a deleted set can no longer be answered.
	_, err = f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: f.qs[1][0].ID, SelectedOption: "A"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

type failingDeleteStore struct {
	*store.Store
	fail bool
}

func (s *failingDeleteStore) DeleteSet(ctx context.Context, userID, setID string) error {
	if s.fail {
		return errors.New("database is locked")
	}
	return s.Store.DeleteSet(ctx, userID, setID)
}

func TestDeleteSet_RetryAfterFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.sets[1]
	_, err := f.st.Grant(ctx, "u1", target.ID, entitlement.OriginManual)
	require.NoError(t, err)

	flaky := &failingDeleteStore{Store: f.st, fail: true}
	svc := New(flaky, Options{Now: func() time.Time { return now }})

	err = svc.DeleteSet(ctx, "u1", target.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDependencyUnavailable, apperr.KindOf(err))
	assert.True(t, apperr.IsRetryable(err))

	set, err := f.st.GetSet(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, set.IsActive)

	flaky.fail = false
	require.NoError(t, svc.DeleteSet(ctx, "u1", target.ID))
	ok, err := f.st.HasGrant(ctx, "u1", target.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetProgress_SameLogSameResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := now
	svc := New(f.st, Options{Now: func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}})
	_, err := svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: f.qs[0][0].ID, SelectedOption: "B"})
	require.NoError(t, err)

	first, err := svc.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	second, err := svc.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := f.st.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestGetProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.subscribe(t, "u1", subscription.StatusActive)

	outcomes := []string{"B", "C", "B", "B", "A", "B", "A", "A", "B"}
	i := 0
	for _, qs := range f.qs {
		for _, q := range qs {
			_, err := f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: q.ID, SelectedOption: outcomes[i]})
			require.NoError(t, err)
			i++
		}
	}

	p, err := f.svc.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	// Algebra 3/6, Geometry 3/3.
	assert.Equal(t, 9, p.TotalAttempted)
	assert.Equal(t, 6, p.TotalCorrect)
	assert.Equal(t, 66.67, p.AverageScore)
	assert.Equal(t, 267, p.PredictedScore)
	assert.Equal(t, []string{"Algebra"}, p.WeakTopics)
	assert.Equal(t, []string{"Geometry"}, p.StrongTopics)

	stored, err := f.st.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, p.TotalCorrect, stored.TotalCorrect)
	assert.Equal(t, p.WeakTopics, stored.WeakTopics)

	again, err := f.svc.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestAnalyzePerformance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, q := range f.qs[0] {
		_, err := f.svc.SubmitAnswer(ctx, scoring.Submission{UserID: "u1", QuestionID: q.ID, SelectedOption: "A"})
		require.NoError(t, err)
	}

	rep, err := f.svc.AnalyzePerformance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalAttempted)
	assert.Equal(t, 0.0, rep.OverallAccuracy)
	require.NotEmpty(t, rep.Recommendations)
	assert.Equal(t, "study_plan", rep.Recommendations[0].Type)

	stored, err := f.st.GetProgress(ctx, "u1", "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalAttempted)
}

func TestSubjectOverview(t *testing.T) {
	f := newFixture(t)
	rows, err := f.svc.SubjectOverview(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Mathematics", rows[0].Subject)
	assert.Equal(t, entitlement.OverallFree, rows[0].Status)
	assert.Equal(t, entitlement.Counts{Total: 3, Accessible: 1, Locked: 2}, rows[0].Counts)
	for _, r := range rows[1:] {
		assert.Equal(t, entitlement.OverallNoContent, r.Status, r.Subject)
	}
}

func TestSubscriptionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.SubscriptionStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StateNone, st.State)

	f.subscribe(t, "u1", subscription.StatusCanceled)
	st, err = f.svc.SubscriptionStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StateInactive, st.State)
}

// brokenStore fails set listing.
type brokenStore struct {
	*store.Store
}

func (brokenStore) ListActiveSets(context.Context, string) ([]store.QuestionSet, error) {
	return nil, errors.New("database is locked")
}

func TestStoreFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	svc := New(brokenStore{f.st}, Options{})
	_, err := svc.GetAccessibleSets(context.Background(), "u1", "Mathematics")
	assert.Equal(t, apperr.KindDependencyUnavailable, apperr.KindOf(err))
	assert.True(t, apperr.IsRetryable(err))
}
