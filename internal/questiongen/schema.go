package questiongen

import "github.com/abhisek/examprep/internal/llm"

// BatchSchema is the structured output requested from the model.
var BatchSchema = &llm.Schema{
	Name:        "exam-question-batch",
	Description: "A batch of multiple-choice interview preparation questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question stem, self-contained and unambiguous",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    2,
							"description": "Exactly four distinct answer options",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied verbatim from options",
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "The syllabus topic the question tests",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences on why the answer is correct",
						},
					},
					"required":             []string{"question", "options", "correctAnswer", "topic", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	},
}
