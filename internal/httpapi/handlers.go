package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/jambcoach/internal/apperr"
	"github.com/abhisek/jambcoach/internal/coach"
	"github.com/abhisek/jambcoach/internal/entitlement"
	"github.com/abhisek/jambcoach/internal/progress"
	"github.com/abhisek/jambcoach/internal/scoring"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subscription"
)

// Coach is the set of core operations the API serves. *coach.Service
// implements it.
type Coach interface {
	GetAccessibleSets(ctx context.Context, userID, subj string) (entitlement.Result, error)
	GetSetQuestions(ctx context.Context, userID, setID string) (coach.SetQuestions, error)
	DeleteSet(ctx context.Context, userID, setID string) error
	SubmitAnswer(ctx context.Context, sub scoring.Submission) (scoring.Outcome, error)
	GetProgress(ctx context.Context, userID, subj string) (store.SubjectProgress, error)
	AnalyzePerformance(ctx context.Context, userID string) (progress.Report, error)
	SubjectOverview(ctx context.Context, userID string) ([]coach.SubjectStatus, error)
	SubscriptionStatus(ctx context.Context, userID string) (subscription.Status, error)
}

type countsDTO struct {
	Total      int `json:"total"`
	Accessible int `json:"accessible"`
	Locked     int `json:"locked"`
}

func toCounts(c entitlement.Counts) countsDTO {
	return countsDTO{Total: c.Total, Accessible: c.Accessible, Locked: c.Locked}
}

type setDTO struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	DeliveredAt    time.Time `json:"delivered_at"`
	TotalQuestions int       `json:"total_questions"`
	CanAccess      bool      `json:"can_access"`
	Reason         string    `json:"reason"`
	IsFirstSet     bool      `json:"is_first_set"`
}

func toSet(sa entitlement.SetAccess) setDTO {
	return setDTO{
		ID:             sa.Set.ID,
		Subject:        sa.Set.Subject,
		Title:          sa.Set.Title,
		Description:    sa.Set.Description,
		DeliveredAt:    sa.Set.DeliveredAt,
		TotalQuestions: sa.Set.TotalQuestions,
		CanAccess:      sa.CanAccess,
		Reason:         string(sa.Reason),
		IsFirstSet:     sa.IsAnchor,
	}
}

type setsResponse struct {
	Subject string    `json:"subject"`
	Status  string    `json:"status"`
	Counts  countsDTO `json:"counts"`
	Sets    []setDTO  `json:"sets"`
}

type subjectDTO struct {
	Subject string    `json:"subject"`
	Status  string    `json:"status"`
	Counts  countsDTO `json:"counts"`
}

type questionDTO struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty"`
	Text       string `json:"question_text"`
	OptionA    string `json:"option_a"`
	OptionB    string `json:"option_b"`
	OptionC    string `json:"option_c"`
	OptionD    string `json:"option_d"`
	Position   int    `json:"position"`
}

type setQuestionsResponse struct {
	Set       setDTO        `json:"set"`
	Questions []questionDTO `json:"questions"`
}

type answerRequest struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	TimeSpent      int    `json:"time_spent"`
}

type answerResponse struct {
	AnswerID      string  `json:"answer_id"`
	IsCorrect     bool    `json:"is_correct"`
	CorrectOption string  `json:"correct_option"`
	Explanation   string  `json:"explanation"`
	TimesAnswered int64   `json:"times_answered"`
	CorrectRate   float64 `json:"correct_rate"`
}

type progressResponse struct {
	Subject          string     `json:"subject"`
	TotalAttempted   int        `json:"total_attempted"`
	TotalCorrect     int        `json:"total_correct"`
	AverageScore     float64    `json:"average_score"`
	WeakTopics       []string   `json:"weak_topics"`
	StrongTopics     []string   `json:"strong_topics"`
	LastPracticeDate *time.Time `json:"last_practice_date"`
	PredictedScore   int        `json:"predicted_score"`
}

func toProgress(p store.SubjectProgress) progressResponse {
	r := progressResponse{
		Subject:        p.Subject,
		TotalAttempted: p.TotalAttempted,
		TotalCorrect:   p.TotalCorrect,
		AverageScore:   p.AverageScore,
		WeakTopics:     nonNil(p.WeakTopics),
		StrongTopics:   nonNil(p.StrongTopics),
		PredictedScore: p.PredictedScore,
	}
	if !p.LastPracticeDate.IsZero() {
		t := p.LastPracticeDate
		r.LastPracticeDate = &t
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type subscriptionResponse struct {
	State     string     `json:"state"`
	Active    bool       `json:"active"`
	Status    string     `json:"status,omitempty"`
	PlanType  string     `json:"plan_type,omitempty"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
}

type handlers struct {
	svc Coach
}

func (h *handlers) health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

func (h *handlers) listSubjects(c *gin.Context) {
	rows, err := h.svc.SubjectOverview(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]subjectDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, subjectDTO{Subject: r.Subject, Status: string(r.Status), Counts: toCounts(r.Counts)})
	}
	respondOK(c, gin.H{"subjects": out})
}

func (h *handlers) listSets(c *gin.Context) {
	res, err := h.svc.GetAccessibleSets(c.Request.Context(), currentUser(c), c.Param("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := setsResponse{
		Subject: res.Subject,
		Status:  string(res.Status),
		Counts:  toCounts(res.Counts),
		Sets:    make([]setDTO, 0, len(res.Sets)),
	}
	for _, sa := range res.Sets {
		out.Sets = append(out.Sets, toSet(sa))
	}
	respondOK(c, out)
}

func (h *handlers) setQuestions(c *gin.Context) {
	res, err := h.svc.GetSetQuestions(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := setQuestionsResponse{Set: toSet(res.Access), Questions: make([]questionDTO, 0, len(res.Questions))}
	for _, q := range res.Questions {
		out.Questions = append(out.Questions, questionDTO{
			ID:         q.ID,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Text:       q.Text,
			OptionA:    q.Options[0],
			OptionB:    q.Options[1],
			OptionC:    q.Options[2],
			OptionD:    q.Options[3],
			Position:   q.Position,
		})
	}
	respondOK(c, out)
}

func (h *handlers) deleteSet(c *gin.Context) {
	if err := h.svc.DeleteSet(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *handlers) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.InvalidInput("httpapi.submitAnswer", "malformed request body"))
		return
	}
	out, err := h.svc.SubmitAnswer(c.Request.Context(), scoring.Submission{
		UserID:           currentUser(c),
		QuestionID:       req.QuestionID,
		SelectedOption:   req.SelectedOption,
		TimeSpentSeconds: req.TimeSpent,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, answerResponse{
		AnswerID:      out.AnswerID,
		IsCorrect:     out.IsCorrect,
		CorrectOption: out.CorrectOption,
		Explanation:   out.Explanation,
		TimesAnswered: out.Stats.TimesAnswered,
		CorrectRate:   out.Stats.CorrectRate,
	})
}

func (h *handlers) getProgress(c *gin.Context) {
	p, err := h.svc.GetProgress(c.Request.Context(), currentUser(c), c.Param("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toProgress(p))
}

func (h *handlers) performance(c *gin.Context) {
	report, err := h.svc.AnalyzePerformance(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

func (h *handlers) subscription(c *gin.Context) {
	st, err := h.svc.SubscriptionStatus(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := subscriptionResponse{State: string(st.State), Active: st.Active()}
	if rec := st.Record; rec != nil {
		out.Status = rec.Status
		out.PlanType = rec.PlanType
		if !rec.PeriodEnd.IsZero() {
			end := rec.PeriodEnd
			out.PeriodEnd = &end
		}
	}
	respondOK(c, out)
}
