package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions, migrated by ent's migrate engine on Open.
var (
	// QuestionSetsColumns holds the columns for the "question_sets" table.
	QuestionSetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "delivery_date", Type: field.TypeString},
		{Name: "delivered_at", Type: field.TypeTime},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	QuestionSetsTable = &schema.Table{
		Name:       "question_sets",
		Columns:    QuestionSetsColumns,
		PrimaryKey: []*schema.Column{QuestionSetsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "questionset_subject_is_active", Columns: []*schema.Column{QuestionSetsColumns[1], QuestionSetsColumns[7]}},
			{Name: "questionset_subject_delivery_date", Columns: []*schema.Column{QuestionSetsColumns[1], QuestionSetsColumns[4]}},
		},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "question_set_id", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeInt, Default: 1},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "option_a", Type: field.TypeString},
		{Name: "option_b", Type: field.TypeString},
		{Name: "option_c", Type: field.TypeString},
		{Name: "option_d", Type: field.TypeString},
		{Name: "correct_option", Type: field.TypeString},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "position", Type: field.TypeInt},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "times_answered", Type: field.TypeInt64, Default: 0},
		{Name: "correct_rate", Type: field.TypeFloat64, Default: 0},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_question_sets_questions",
				Columns:    []*schema.Column{QuestionsColumns[1]},
				RefColumns: []*schema.Column{QuestionSetsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "question_question_set_id_position", Columns: []*schema.Column{QuestionsColumns[1], QuestionsColumns[12]}},
		},
	}

	// AccessGrantsColumns holds the columns for the "access_grants" table.
	AccessGrantsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_set_id", Type: field.TypeString},
		{Name: "can_access", Type: field.TypeBool, Default: true},
		{Name: "origin", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	AccessGrantsTable = &schema.Table{
		Name:       "access_grants",
		Columns:    AccessGrantsColumns,
		PrimaryKey: []*schema.Column{AccessGrantsColumns[0], AccessGrantsColumns[1]},
	}

	// AnswersColumns holds the columns for the "answers" table.
	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_set_id", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "selected_option", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "time_spent_seconds", Type: field.TypeInt},
		{Name: "answered_at", Type: field.TypeTime},
	}
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answer_user_id_subject", Columns: []*schema.Column{AnswersColumns[2], AnswersColumns[5]}},
		},
	}

	// SubjectProgressColumns holds the columns for the "subject_progress" table.
	SubjectProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "total_attempted", Type: field.TypeInt},
		{Name: "total_correct", Type: field.TypeInt},
		{Name: "average_score", Type: field.TypeFloat64},
		{Name: "weak_topics", Type: field.TypeJSON},
		{Name: "strong_topics", Type: field.TypeJSON},
		{Name: "last_practice_date", Type: field.TypeTime, Nullable: true},
		{Name: "predicted_score", Type: field.TypeInt},
		{Name: "updated_at", Type: field.TypeTime},
	}
	SubjectProgressTable = &schema.Table{
		Name:       "subject_progress",
		Columns:    SubjectProgressColumns,
		PrimaryKey: []*schema.Column{SubjectProgressColumns[0], SubjectProgressColumns[1]},
	}

	// SubscriptionsColumns holds the columns for the "subscriptions" table.
	SubscriptionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "plan_type", Type: field.TypeString, Default: ""},
		{Name: "price_id", Type: field.TypeString, Default: ""},
		{Name: "period_start", Type: field.TypeTime, Nullable: true},
		{Name: "period_end", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	SubscriptionsTable = &schema.Table{
		Name:       "subscriptions",
		Columns:    SubscriptionsColumns,
		PrimaryKey: []*schema.Column{SubscriptionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "subscription_user_id", Columns: []*schema.Column{SubscriptionsColumns[2]}},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
	}

	// ActivityEventsColumns holds the columns for the "activity_events" table.
	ActivityEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "resource_type", Type: field.TypeString},
		{Name: "resource_id", Type: field.TypeString},
		{Name: "metadata", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	ActivityEventsTable = &schema.Table{
		Name:       "activity_events",
		Columns:    ActivityEventsColumns,
		PrimaryKey: []*schema.Column{ActivityEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "activityevent_user_id", Columns: []*schema.Column{ActivityEventsColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuestionSetsTable,
		QuestionsTable,
		AccessGrantsTable,
		AnswersTable,
		SubjectProgressTable,
		SubscriptionsTable,
		LlmRequestEventsTable,
		ActivityEventsTable,
	}
)

func init() {
	QuestionsTable.ForeignKeys[0].RefTable = QuestionSetsTable
}
