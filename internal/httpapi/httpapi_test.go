package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/coach"
	"github.com/abhisek/jambcoach/internal/store"
)

const testSecret = "test-secret-that-is-at-least-32-bytes"

type apiFixture struct {
	router *gin.Engine
	tokens *Tokens
	sets   []store.QuestionSet // oldest first
	qs     [][]store.Question
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &apiFixture{tokens: NewTokens(testSecret, "jambcoach", time.Hour)}
	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	ctx := context.Background()
	for _, d := range []int{0, 3} {
		set, err := st.CreateSet(ctx, store.QuestionSet{
			Subject:      "Mathematics",
			Title:        "Mathematics practice",
			DeliveryDate: base.AddDate(0, 0, d).Format("2006-01-02"),
			DeliveredAt:  base.AddDate(0, 0, d),
		}, []store.Question{
			{Topic: "Algebra", Difficulty: 1, Text: "2x=4, x?", Options: [4]string{"1", "2", "3", "4"}, CorrectOption: "B", Explanation: "x=2"},
			{Topic: "Geometry", Difficulty: 2, Text: "Angles in a triangle?", Options: [4]string{"90", "180", "270", "360"}, CorrectOption: "B", Explanation: "180"},
		})
		require.NoError(t, err)
		qs, err := st.ListQuestions(ctx, set.ID)
		require.NoError(t, err)
		f.sets = append(f.sets, set)
		f.qs = append(f.qs, qs)
	}

	f.router = NewRouter(RouterConfig{
		Service:      coach.New(st, coach.Options{}),
		Tokens:       f.tokens,
		AllowOrigins: []string{"*"},
	})
	return f
}

func (f *apiFixture) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.tokens.Issue(userID)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthNeedsNoToken(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	expired := NewTokens(testSecret, "jambcoach", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredTok, err := expired.Issue("u1")
	require.NoError(t, err)

	otherIssuer, err := NewTokens(testSecret, "someone-else", time.Hour).Issue("u1")
	require.NoError(t, err)

	otherSecret, err := NewTokens("another-secret-that-is-long-enough!!", "jambcoach", time.Hour).Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expiredTok},
		{"wrong issuer", otherIssuer},
		{"wrong secret", otherSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/v1/subjects", tt.token, nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			env := decode[ErrorEnvelope](t, w)
			assert.Equal(t, "unauthorized", env.Error.Code)
			assert.False(t, env.Error.Retryable)
		})
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens(testSecret, "", time.Hour)
	tok, err := tokens.Issue("student-7")
	require.NoError(t, err)
	sub, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "student-7", sub)

	_, err = tokens.Issue("")
	assert.Error(t, err)
}

func TestListSetsAndSubjects(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.token(t, "u1")

	w := f.do(t, http.MethodGet, "/v1/subjects/mathematics/sets", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[setsResponse](t, w)
	assert.Equal(t, "Mathematics", res.Subject)
	assert.Equal(t, "free", res.Status)
	assert.Equal(t, countsDTO{Total: 2, Accessible: 1, Locked: 1}, res.Counts)
	require.Len(t, res.Sets, 2)
	assert.Equal(t, f.sets[1].ID, res.Sets[0].ID)
	assert.False(t, res.Sets[0].CanAccess)
	assert.Equal(t, "subscription_required", res.Sets[0].Reason)
	assert.True(t, res.Sets[1].IsFirstSet)
	assert.Equal(t, "free_first_set", res.Sets[1].Reason)

	w = f.do(t, http.MethodGet, "/v1/subjects", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	subjects := decode[struct {
		Subjects []subjectDTO `json:"subjects"`
	}](t, w)
	require.Len(t, subjects.Subjects, 5)
	for _, s := range subjects.Subjects {
		if s.Subject == "Mathematics" {
			assert.Equal(t, "free", s.Status)
		} else {
			assert.Equal(t, "no_content", s.Status)
		}
	}
}

func TestSetQuestions(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.token(t, "u1")

	w := f.do(t, http.MethodGet, "/v1/sets/"+f.sets[1].ID+"/questions", tok, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	env := decode[ErrorEnvelope](t, w)
	assert.Equal(t, string(apperr.KindAccessDenied), env.Error.Code)

	w = f.do(t, http.MethodGet, "/v1/sets/"+f.sets[0].ID+"/questions", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct_option")
	assert.NotContains(t, w.Body.String(), "explanation")
	res := decode[setQuestionsResponse](t, w)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "180", res.Questions[1].OptionB)

	w = f.do(t, http.MethodGet, "/v1/sets/missing/questions", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAnswerAndProgress(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.token(t, "u1")
	free := f.qs[0]

	w := f.do(t, http.MethodPost, "/v1/answers", tok, answerRequest{QuestionID: free[0].ID, SelectedOption: "b", TimeSpent: 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[answerResponse](t, w)
	assert.True(t, out.IsCorrect)
	assert.Equal(t, "B", out.CorrectOption)
	assert.Equal(t, "x=2", out.Explanation)
	assert.Equal(t, int64(1), out.TimesAnswered)

	w = f.do(t, http.MethodPost, "/v1/answers", tok, answerRequest{QuestionID: free[1].ID, SelectedOption: "A", TimeSpent: 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[answerResponse](t, w).IsCorrect)

	w = f.do(t, http.MethodGet, "/v1/progress/Mathematics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[progressResponse](t, w)
	assert.Equal(t, 2, p.TotalAttempted)
	assert.Equal(t, 1, p.TotalCorrect)
	assert.Equal(t, 50.0, p.AverageScore)
	assert.Equal(t, 200, p.PredictedScore)
	assert.NotNil(t, p.LastPracticeDate)
	assert.Equal(t, []string{}, p.WeakTopics)

	w = f.do(t, http.MethodGet, "/v1/progress/Physics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[progressResponse](t, w)
	assert.Zero(t, empty.TotalAttempted)
	assert.Nil(t, empty.LastPracticeDate)

	w = f.do(t, http.MethodGet, "/v1/performance", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mathematics")
}

func TestSubmitAnswerErrors(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.token(t, "u1")

	tests := []struct {
		name   string
		body   any
		status int
		code   apperr.Kind
	}{
		{"malformed body", "{not json", http.StatusBadRequest, apperr.KindInvalidInput},
		{"bad option", answerRequest{QuestionID: f.qs[0][0].ID, SelectedOption: "E"}, http.StatusBadRequest, apperr.KindInvalidInput},
		{"negative time", answerRequest{QuestionID: f.qs[0][0].ID, SelectedOption: "A", TimeSpent: -1}, http.StatusBadRequest, apperr.KindInvalidInput},
		{"unknown question", answerRequest{QuestionID: "nope", SelectedOption: "A"}, http.StatusNotFound, apperr.KindNotFound},
		{"locked set", answerRequest{QuestionID: f.qs[1][0].ID, SelectedOption: "A"}, http.StatusForbidden, apperr.KindAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/v1/answers", tok, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, string(tt.code), decode[ErrorEnvelope](t, w).Error.Code)
		})
	}
}

func TestDeleteSet(t *testing.T) {
	f := newAPIFixture(t)
	tok := f.token(t, "u1")
	path := "/v1/sets/" + f.sets[1].ID

	w := f.do(t, http.MethodDelete, path, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodDelete, path, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/v1/subjects/Mathematics/sets", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[setsResponse](t, w).Sets, 1)
}

func TestSubscriptionEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/v1/subscription", f.token(t, "u1"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[subscriptionResponse](t, w)
	assert.Equal(t, "none", res.State)
	assert.False(t, res.Active)
}

func TestCORSPreflight(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/subjects", nil)
	req.Header.Set("Origin", "https://coach.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

type failingCoach struct {
	Coach
	err error
}

func (c failingCoach) SubjectOverview(context.Context, string) ([]coach.SubjectStatus, error) {
	return nil, c.err
}

func TestErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokens(testSecret, "", time.Hour)
	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		err       error
		status    int
		retryable bool
		message   string
	}{
		{"not found", apperr.NotFound("op", "set %q not found", "x"), http.StatusNotFound, false, `set "x" not found`},
		{"invalid", apperr.InvalidInput("op", "bad"), http.StatusBadRequest, false, "bad"},
		{"denied", apperr.AccessDenied("op", "locked"), http.StatusForbidden, false, "locked"},
		{"unavailable", apperr.Unavailable("op", errors.New("disk I/O error")), http.StatusServiceUnavailable, true, "service temporarily unavailable"},
		{"generation", apperr.GenerationFailed("op", errors.New("bad json")), http.StatusBadGateway, true, "question generation failed"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, false, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(RouterConfig{Service: failingCoach{err: tt.err}, Tokens: tokens, AllowOrigins: []string{"*"}})
			req := httptest.NewRequest(http.MethodGet, "/v1/subjects", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tt.retryable, env.Error.Retryable)
			assert.Equal(t, tt.message, env.Error.Message)
			assert.NotContains(t, w.Body.String(), "disk I/O")
		})
	}
}
