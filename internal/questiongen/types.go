// Package questiongen builds fresh question sets with an LLM provider and
// schedules the recurring generation job.
package questiongen

import (
	"time"

	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subject"
)

// Candidate is one generated question as returned by the model, before it
// is accepted into a set.
type Candidate struct {
	QuestionText  string `json:"question_text" validate:"required,max=800"`
	OptionA       string `json:"option_a" validate:"required,max=300"`
	OptionB       string `json:"option_b" validate:"required,max=300"`
	OptionC       string `json:"option_c" validate:"required,max=300"`
	OptionD       string `json:"option_d" validate:"required,max=300"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string `json:"explanation" validate:"required,max=1500"`
	Difficulty    int    `json:"difficulty" validate:"min=1,max=3"`

	// Topic is set by the generator, not the model.
	Topic string `json:"-"`
}

// Options returns the four options in A-D order.
func (c Candidate) Options() [4]string {
	return [4]string{c.OptionA, c.OptionB, c.OptionC, c.OptionD}
}

// Question converts an accepted candidate into a store row.
func (c Candidate) Question(subj, source string) store.Question {
	return store.Question{
		Subject:       subj,
		Topic:         c.Topic,
		Difficulty:    c.Difficulty,
		Text:          c.QuestionText,
		Options:       c.Options(),
		CorrectOption: c.CorrectAnswer,
		Explanation:   c.Explanation,
		Source:        source,
	}
}

// Config controls generation.
type Config struct {
	// Subjects generated each cycle, in order.
	Subjects []string

	// QuestionsPerSubject is the target size of each set.
	QuestionsPerSubject int

	// MinTopics and MaxTopics bound the topic list requested per subject.
	MinTopics int
	MaxTopics int

	// Concurrency is how many subjects generate at once.
	Concurrency int

	// Validators run in order on every candidate; the first failure rejects it.
	Validators []Validator

	TopicMaxTokens    int
	QuestionMaxTokens int
	Temperature       float64

	// MaxPriorQuestions caps the already-generated texts quoted back to the
	// model so later topics do not repeat earlier ones.
	MaxPriorQuestions int

	// Location is the exam-region calendar used for delivery dates.
	Location *time.Location

	// Source labels the rows this generator writes.
	Source string
}

// WAT is West Africa Time, the exam region's zone. It has no DST.
var WAT = time.FixedZone("WAT", 60*60)

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Subjects:            append([]string(nil), subject.All...),
		QuestionsPerSubject: 50,
		MinTopics:           3,
		MaxTopics:           5,
		Concurrency:         2,
		Validators: []Validator{
			NewStructuralValidator(),
			&DistinctOptionsValidator{},
		},
		TopicMaxTokens:    500,
		QuestionMaxTokens: 8000,
		Temperature:       0.7,
		MaxPriorQuestions: 20,
		Location:          WAT,
		Source:            "llm-automated",
	}
}

// fallbackTopics is used when the topic request fails.
var fallbackTopics = map[string][]string{
	subject.Mathematics: {"Algebra", "Geometry", "Calculus"},
	subject.Physics:     {"Mechanics", "Thermodynamics", "Optics"},
	subject.Chemistry:   {"Organic Chemistry", "Inorganic Chemistry", "Physical Chemistry"},
	subject.Biology:     {"Cell Biology", "Genetics", "Ecology"},
	subject.English:     {"Comprehension", "Grammar", "Vocabulary"},
}

// FallbackTopics returns the fixed topic list for a subject.
func FallbackTopics(subj string) []string {
	if ts, ok := fallbackTopics[subject.Canonical(subj)]; ok {
		return append([]string(nil), ts...)
	}
	return []string{"General"}
}
