package interview

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/examprep/internal/llm"
)

// FeedbackProvider evaluates a finished interview.
type FeedbackProvider interface {
	Evaluate(ctx context.Context, s Session) (Feedback, error)
}

// FeedbackSchema constrains the evaluator's output.
var FeedbackSchema = &llm.Schema{
	Name:        "interview-feedback",
	Description: "Structured feedback on a mock interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"strengths":        bulletList("What the candidate did well"),
			"weaknesses":       bulletList("Where the candidate fell short"),
			"improvement_tips": bulletList("Concrete next steps, each actionable within a week"),
		},
		"required":             []string{"strengths", "weaknesses", "improvement_tips"},
		"additionalProperties": false,
	},
}

func bulletList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"minItems":    1,
		"maxItems":    6,
		"description": desc,
	}
}

const evaluatorSystem = `You are a senior engineer giving candid, encouraging feedback after a mock interview.
Base your feedback on the interview type, its length and the score the session produced.
Write short bullet points without numbering. Do not restate the score.`

var evaluatorPrompt = template.Must(template.New("feedback").Parse(
	`Interview type: {{.SessionType}}
Duration: {{.Duration}}
Overall score: {{.OverallScore}}/100 ({{.Band}})
{{- if .Notes}}
Candidate notes:
{{.Notes}}
{{- end}}`))

// Evaluator produces feedback with an LLM.
type Evaluator struct {
	provider    llm.Provider
	MaxTokens   int
	Temperature float64
}

// NewEvaluator returns an Evaluator with default generation settings.
func NewEvaluator(p llm.Provider) *Evaluator {
	return &Evaluator{provider: p, MaxTokens: 1024, Temperature: 0.4}
}

// Evaluate asks the model for feedback on s.
func (e *Evaluator) Evaluate(ctx context.Context, s Session) (Feedback, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeInterviewFeedback)

	var prompt bytes.Buffer
	err := evaluatorPrompt.Execute(&prompt, map[string]any{
		"SessionType":  s.SessionType,
		"Duration":     FormatDuration(s.DurationSeconds),
		"OverallScore": s.OverallScore,
		"Band":         ScoreBand(s.OverallScore),
		"Notes":        strings.TrimSpace(s.Notes),
	})
	if err != nil {
		return Feedback{}, fmt.Errorf("render feedback prompt: %w", err)
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      evaluatorSystem,
		Messages:    llm.UserPrompt(prompt.String()),
		Schema:      FeedbackSchema,
		MaxTokens:   e.MaxTokens,
		Temperature: e.Temperature,
	})
	if err != nil {
		return Feedback{}, fmt.Errorf("interview feedback: %w", err)
	}
	var fb Feedback
	if err := resp.Decode(&fb); err != nil {
		return Feedback{}, fmt.Errorf("interview feedback: %w", err)
	}
	return fb, nil
}
