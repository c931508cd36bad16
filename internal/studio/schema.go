package studio

import "github.com/abhisek/drillz/internal/llm"

// ExplanationSchema is the structured output of one explanation call.
var ExplanationSchema = &llm.Schema{
	Name:        "question-explanation",
	Description: "Why the correct answer to a drill question is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "1-3 sentences explaining the correct answer",
				"minLength":   1,
				"maxLength":   600,
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
}
