package questiongen

import "github.com/abhisek/jambcoach/internal/llm"

// TopicSchema is the response shape of the topic request.
func TopicSchema(min, max int) *llm.Schema {
	return &llm.Schema{
		Name:        "topic-list",
		Description: "Examination topics for one subject",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topics": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"minItems":    min,
					"maxItems":    max,
					"description": "Distinct syllabus topic names",
				},
			},
			"required":             []any{"topics"},
			"additionalProperties": false,
		},
	}
}

var optionField = map[string]any{"type": "string"}

// QuestionBatchSchema is the response shape of a question request.
var QuestionBatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of four-option multiple-choice questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_text": map[string]any{"type": "string"},
						"option_a":      optionField,
						"option_b":      optionField,
						"option_c":      optionField,
						"option_d":      optionField,
						"correct_answer": map[string]any{
							"type": "string",
							"enum": []any{"A", "B", "C", "D"},
						},
						"explanation": map[string]any{"type": "string"},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     3,
							"description": "1 easy, 2 medium, 3 hard",
						},
					},
					"required": []any{"question_text", "option_a", "option_b", "option_c",
						"option_d", "correct_answer", "explanation", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
