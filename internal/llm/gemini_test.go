package llm

import "testing"

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"correct_answer": map[string]any{"type": "string", "enum": []string{"A", "B", "C", "D"}},
						"difficulty":     map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					},
					"required": []any{"correct_answer"},
				},
			},
		},
		"required": []string{"questions"},
	}

	s := geminiSchema(def)
	if s.Type != "OBJECT" || len(s.Required) != 1 {
		t.Fatalf("root = %+v", s)
	}
	questions := s.Properties["questions"]
	if questions.Type != "ARRAY" || questions.MinItems == nil || *questions.MinItems != 1 {
		t.Fatalf("questions = %+v", questions)
	}
	item := questions.Items
	if len(item.Properties["correct_answer"].Enum) != 4 {
		t.Fatalf("enum not carried: %+v", item.Properties["correct_answer"])
	}
	diff := item.Properties["difficulty"]
	if diff.Type != "INTEGER" || diff.Maximum == nil || *diff.Maximum != 3 {
		t.Fatalf("difficulty = %+v", diff)
	}
	if len(item.Required) != 1 {
		t.Fatalf("item required = %v", item.Required)
	}
}
