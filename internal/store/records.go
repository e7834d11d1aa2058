package store

import "time"

// QuestionSet is a titled group of questions for one subject, delivered at a
// point in time.
type QuestionSet struct {
	ID             string
	Subject        string
	Title          string
	Description    string
	DeliveryDate   string // YYYY-MM-DD in the exam-region calendar
	DeliveredAt    time.Time
	TotalQuestions int
	IsActive       bool
	Sequence       int64 // creation order; breaks DeliveredAt ties
	Source         string
	CreatedAt      time.Time
}

// Question is a single multiple-choice item. TimesAnswered and CorrectRate
// are maintained by AppendAnswer.
type Question struct {
	ID            string
	SetID         string
	Subject       string
	Topic         string
	Difficulty    int
	Text          string
	Options       [4]string // A, B, C, D
	CorrectOption string
	Explanation   string
	Position      int
	IsActive      bool
	TimesAnswered int64
	CorrectRate   float64
	Source        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionStats is the running answer tally of a question.
type QuestionStats struct {
	TimesAnswered int64
	CorrectRate   float64
}

// Grant is a persisted access entitlement of a user to a question set.
type Grant struct {
	UserID    string
	SetID     string
	Origin    string
	CreatedAt time.Time
}

// Answer is one immutable submission.
type Answer struct {
	ID               string
	Sequence         int64
	UserID           string
	QuestionID       string
	SetID            string
	Subject          string
	Topic            string
	SelectedOption   string
	IsCorrect        bool
	TimeSpentSeconds int
	AnsweredAt       time.Time
}

// SubjectProgress is the derived standing of a user in one subject.
type SubjectProgress struct {
	UserID           string
	Subject          string
	TotalAttempted   int
	TotalCorrect     int
	AverageScore     float64
	WeakTopics       []string
	StrongTopics     []string
	LastPracticeDate time.Time // zero when nothing was attempted
	PredictedScore   int
	UpdatedAt        time.Time
}

// SubscriptionRecord is a billing record. The most recent one per user wins.
type SubscriptionRecord struct {
	ID          string
	Sequence    int64
	UserID      string
	Status      string
	PlanType    string
	PriceID     string
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
}

// LLMEvent captures a single text-generation request.
type LLMEvent struct {
	ID           int
	Sequence     int64
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	CreatedAt    time.Time
}

// ActivityEvent is an audit entry of a user action.
type ActivityEvent struct {
	ID           int
	Sequence     int64
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]any
	CreatedAt    time.Time
}
