package skillgap

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/examprep/internal/llm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a request before it is sent for analysis.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid skill-gap request: %w", err)
	}
	return nil
}

// AnalysisSchema constrains the analyzer output.
var AnalysisSchema = &llm.Schema{
	Name:        "skill-gap-analysis",
	Description: "Missing skills, a phased roadmap and preparation strategies for a target role",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"missingSkills": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
			"roadmap": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"phase": map[string]any{"type": "string", "description": "Time span, e.g. Weeks 1-2"},
						"focus": map[string]any{"type": "string"},
						"tasks": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 1,
						},
					},
					"required":             []string{"phase", "focus", "tasks"},
					"additionalProperties": false,
				},
			},
			"strategies": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"missingSkills", "roadmap", "strategies"},
		"additionalProperties": false,
	},
}

const analyzerSystem = `You are a career coach for software engineers.
Given a target role, the skills a candidate already has and the weeks they can prepare,
list the skills they are missing, lay out a roadmap whose phases fit inside the preparation window,
and suggest study strategies. Never list a skill the candidate already has as missing.`

// Analyzer produces skill-gap analyses with an LLM.
type Analyzer struct {
	provider  llm.Provider
	MaxTokens int
}

// NewAnalyzer returns an Analyzer using p.
func NewAnalyzer(p llm.Provider) *Analyzer {
	return &Analyzer{provider: p, MaxTokens: 2048}
}

// Analyze validates req and asks the model for an analysis. Missing skills
// that the candidate already listed are removed from the result.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Analysis, error) {
	if err := req.Validate(); err != nil {
		return Analysis{}, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeSkillGap)

	skills := "none listed"
	if len(req.CurrentSkills) > 0 {
		skills = strings.Join(req.CurrentSkills, ", ")
	}
	prompt := fmt.Sprintf("Target role: %s\nCurrent skills: %s\nPreparation time: %d weeks",
		req.TargetRole, skills, req.PreparationWeeks)

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      analyzerSystem,
		Messages:    llm.UserPrompt(prompt),
		Schema:      AnalysisSchema,
		MaxTokens:   a.MaxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("skill-gap analysis: %w", err)
	}
	var out Analysis
	if err := resp.Decode(&out); err != nil {
		return Analysis{}, fmt.Errorf("skill-gap analysis: %w", err)
	}
	out.MissingSkills = withoutKnown(out.MissingSkills, req.CurrentSkills)
	return out, nil
}

func withoutKnown(missing, known []string) []string {
	have := make(map[string]bool, len(known))
	for _, k := range known {
		have[strings.ToLower(strings.TrimSpace(k))] = true
	}
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		if !have[strings.ToLower(strings.TrimSpace(m))] {
			out = append(out, m)
		}
	}
	return out
}

// SkillsToLearn is the count shown in activity summaries.
func (r Report) SkillsToLearn() int {
	return len(r.MissingSkills)
}
