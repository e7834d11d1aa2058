// Package progress folds a learner's answer log into subject standing and a
// performance report with study recommendations.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/jambcoach/internal/store"
)

const (
	// MinTopicAttempts is the sample floor below which a topic is neither
	// weak nor strong.
	MinTopicAttempts = 3
	// WeakBelow and StrongFrom are accuracy percentages.
	WeakBelow  = 60.0
	StrongFrom = 80.0
	// MaxScore is the top of the exam's aggregate scale.
	MaxScore = 400
	// ReportWindow is the trailing window used by Analyze.
	ReportWindow = 30 * 24 * time.Hour
)

// PredictScore projects an accuracy percentage linearly onto 0..MaxScore.
// It is an approximation, not a calibrated model.
func PredictScore(accuracy float64) int {
	return int(math.Round(accuracy / 100 * MaxScore))
}

// Accuracy returns correct/total as a percentage, 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type tally struct {
	total, correct int
	seconds        int
}

func (t *tally) add(a store.Answer) {
	t.total++
	t.seconds += a.TimeSpentSeconds
	if a.IsCorrect {
		t.correct++
	}
}

func (t tally) accuracy() float64 { return Accuracy(t.correct, t.total) }

// classify splits topics into weak and strong, name-sorted. Topics below the
// sample floor and those in the 60-80 band are left out.
func classify(topics map[string]*tally) (weak, strong []string) {
	weak, strong = []string{}, []string{}
	for name, t := range topics {
		if t.total < MinTopicAttempts {
			continue
		}
		switch acc := t.accuracy(); {
		case acc < WeakBelow:
			weak = append(weak, name)
		case acc >= StrongFrom:
			strong = append(strong, name)
		}
	}
	sort.Strings(weak)
	sort.Strings(strong)
	return weak, strong
}

// Recompute derives the SubjectProgress of userID in subject from the
// all-time answer log. Answers of other users or subjects are ignored. The
// result depends only on the log, so the same log always yields the same row.
// UpdatedAt is left zero; the store stamps it on write.
func Recompute(userID, subject string, answers []store.Answer) store.SubjectProgress {
	var (
		all    tally
		topics = map[string]*tally{}
		last   time.Time
	)
	for _, a := range answers {
		if a.UserID != userID || a.Subject != subject {
			continue
		}
		all.add(a)
		t, ok := topics[a.Topic]
		if !ok {
			t = &tally{}
			topics[a.Topic] = t
		}
		t.add(a)
		if a.AnsweredAt.After(last) {
			last = a.AnsweredAt
		}
	}

	weak, strong := classify(topics)
	acc := all.accuracy()
	return store.SubjectProgress{
		UserID:           userID,
		Subject:          subject,
		TotalAttempted:   all.total,
		TotalCorrect:     all.correct,
		AverageScore:     round2(acc),
		WeakTopics:       weak,
		StrongTopics:     strong,
		LastPracticeDate: last.UTC(),
		PredictedScore:   PredictScore(acc),
	}
}
