package progress

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subject"
)

// SubjectPerformance is the windowed standing in one subject.
type SubjectPerformance struct {
	Subject            string  `json:"subject"`
	Accuracy           float64 `json:"accuracy"`
	TotalQuestions     int     `json:"total_questions"`
	CorrectAnswers     int     `json:"correct_answers"`
	AverageTimeSeconds int     `json:"average_time_per_question"`
}

// TopicPerformance is a classified topic.
type TopicPerformance struct {
	Subject  string  `json:"subject"`
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

// Recommendation kinds and priorities.
const (
	KindStudyPlan        = "study_plan"
	KindPracticeIncrease = "practice_increase"
	KindExamReadiness    = "exam_readiness"
	KindSubjectFocus     = "subject_focus"
	KindTopicReview      = "topic_review"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// MaxTopicRecommendations caps topic_review entries.
const MaxTopicRecommendations = 3

// Recommendation is one study suggestion.
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
	Topic    string `json:"topic,omitempty"`
}

// Report is the performance analysis over the trailing window.
type Report struct {
	UserID          string               `json:"user_id"`
	AnalysisDate    time.Time            `json:"analysis_date"`
	WindowStart     time.Time            `json:"window_start"`
	OverallAccuracy float64              `json:"overall_accuracy"`
	PredictedScore  int                  `json:"predicted_jamb_score"`
	TotalAttempted  int                  `json:"total_questions_attempted"`
	Subjects        []SubjectPerformance `json:"subject_performance"`
	WeakTopics      []TopicPerformance   `json:"weak_topics"`
	StrongTopics    []TopicPerformance   `json:"strong_topics"`
	Recommendations []Recommendation     `json:"recommendations"`
}

// Analyze builds the report for userID from answers within ReportWindow
// before asOf. Subjects appear in subject.Less order.
func Analyze(userID string, answers []store.Answer, asOf time.Time) Report {
	from := asOf.Add(-ReportWindow)
	rep := Report{
		UserID:          userID,
		AnalysisDate:    asOf.UTC(),
		WindowStart:     from.UTC(),
		Subjects:        []SubjectPerformance{},
		WeakTopics:      []TopicPerformance{},
		StrongTopics:    []TopicPerformance{},
		Recommendations: []Recommendation{},
	}

	var (
		all      tally
		subjects = map[string]*tally{}
		topics   = map[[2]string]*tally{}
	)
	for _, a := range answers {
		if a.UserID != userID || a.AnsweredAt.Before(from) || a.AnsweredAt.After(asOf) {
			continue
		}
		all.add(a)
		st, ok := subjects[a.Subject]
		if !ok {
			st = &tally{}
			subjects[a.Subject] = st
		}
		st.add(a)
		key := [2]string{a.Subject, a.Topic}
		tt, ok := topics[key]
		if !ok {
			tt = &tally{}
			topics[key] = tt
		}
		tt.add(a)
	}

	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	subject.Sort(names)
	for _, name := range names {
		t := subjects[name]
		rep.Subjects = append(rep.Subjects, SubjectPerformance{
			Subject:            name,
			Accuracy:           round2(t.accuracy()),
			TotalQuestions:     t.total,
			CorrectAnswers:     t.correct,
			AverageTimeSeconds: int(math.Round(float64(t.seconds) / float64(t.total))),
		})
	}

	for key, t := range topics {
		if t.total < MinTopicAttempts {
			continue
		}
		tp := TopicPerformance{Subject: key[0], Topic: key[1], Accuracy: round2(t.accuracy()), Attempts: t.total}
		switch acc := t.accuracy(); {
		case acc < WeakBelow:
			rep.WeakTopics = append(rep.WeakTopics, tp)
		case acc >= StrongFrom:
			rep.StrongTopics = append(rep.StrongTopics, tp)
		}
	}
	sortTopics(rep.WeakTopics, true)
	sortTopics(rep.StrongTopics, false)

	acc := all.accuracy()
	rep.TotalAttempted = all.total
	rep.OverallAccuracy = round2(acc)
	rep.PredictedScore = PredictScore(acc)
	rep.Recommendations = Recommend(rep.Subjects, rep.WeakTopics)
	return rep
}

// sortTopics orders weak topics by ascending accuracy and strong topics by
// descending accuracy, then by subject and topic name.
func sortTopics(ts []TopicPerformance, ascending bool) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Accuracy != b.Accuracy {
			if ascending {
				return a.Accuracy < b.Accuracy
			}
			return a.Accuracy > b.Accuracy
		}
		if a.Subject != b.Subject {
			return subject.Less(a.Subject, b.Subject)
		}
		return a.Topic < b.Topic
	})
}

// Recommend applies the recommendation rule table: one overall entry keyed
// on the mean subject accuracy, one subject_focus per subject below 60%,
// then topic_review for up to three of the weakest topics. subjects and
// weak must already be in display order.
func Recommend(subjects []SubjectPerformance, weak []TopicPerformance) []Recommendation {
	out := []Recommendation{}
	if len(subjects) > 0 {
		var sum float64
		for _, s := range subjects {
			sum += s.Accuracy
		}
		switch mean := sum / float64(len(subjects)); {
		case mean < 50:
			out = append(out, Recommendation{
				Type: KindStudyPlan, Priority: PriorityHigh,
				Message: "Focus on building fundamental knowledge across all subjects. Consider reviewing basic concepts before attempting practice questions.",
			})
		case mean < 70:
			out = append(out, Recommendation{
				Type: KindPracticeIncrease, Priority: PriorityMedium,
				Message: "Increase daily practice time and focus on understanding explanations for incorrect answers.",
			})
		default:
			out = append(out, Recommendation{
				Type: KindExamReadiness, Priority: PriorityLow,
				Message: "Great progress! Focus on maintaining consistency and tackling more challenging questions.",
			})
		}
	}

	for _, s := range subjects {
		if s.Accuracy < WeakBelow {
			out = append(out, Recommendation{
				Type: KindSubjectFocus, Priority: PriorityHigh, Subject: s.Subject,
				Message: fmt.Sprintf("%s needs significant improvement. Dedicate extra study time to this subject.", s.Subject),
			})
		}
	}

	for i, t := range weak {
		if i == MaxTopicRecommendations {
			break
		}
		out = append(out, Recommendation{
			Type: KindTopicReview, Priority: PriorityMedium, Subject: t.Subject, Topic: t.Topic,
			Message: fmt.Sprintf("Review %s in %s. Current accuracy: %s%%", t.Topic, t.Subject,
				strconv.FormatFloat(t.Accuracy, 'f', -1, 64)),
		})
	}
	return out
}
