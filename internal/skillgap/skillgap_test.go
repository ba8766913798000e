package skillgap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/llm"
)

func TestRequestValidate(t *testing.T) {
	ok := Request{TargetRole: "Backend Engineer", CurrentSkills: []string{"Go"}, PreparationWeeks: 12}
	assert.NoError(t, ok.Validate())

	tests := map[string]Request{
		"no role":     {PreparationWeeks: 4},
		"zero weeks":  {TargetRole: "SRE"},
		"too long":    {TargetRole: "SRE", PreparationWeeks: 105},
		"blank skill": {TargetRole: "SRE", PreparationWeeks: 4, CurrentSkills: []string{"Go", ""}},
	}
	for name, r := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, r.Validate())
		})
	}
}

func TestAnalyzer(t *testing.T) {
	m := llm.NewMockProvider()
	require.NoError(t, m.AddJSON(Analysis{
		MissingSkills: []string{"Kubernetes", "go", "Observability"},
		Roadmap: []Step{
			{Phase: "Weeks 1-3", Focus: "Containers", Tasks: []string{"Deploy a service to kind"}},
			{Phase: "Weeks 4-6", Focus: "Monitoring", Tasks: []string{"Instrument with Prometheus"}},
		},
		Strategies: []string{"Pair each topic with a small project"},
	}))

	req := Request{TargetRole: "Platform Engineer", CurrentSkills: []string{"Go", "Linux"}, PreparationWeeks: 6}
	got, err := NewAnalyzer(m).Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes", "Observability"}, got.MissingSkills)
	assert.Len(t, got.Roadmap, 2)

	sent, _ := m.LastRequest()
	assert.Same(t, AnalysisSchema, sent.Schema)
	assert.Contains(t, sent.Messages[0].Content, "Current skills: Go, Linux")
	assert.Contains(t, sent.Messages[0].Content, "6 weeks")

	rep := Report{Analysis: got}
	assert.Equal(t, 2, rep.SkillsToLearn())
}

func TestAnalyzerRejectsBadInput(t *testing.T) {
	m := llm.NewMockProvider()
	_, err := NewAnalyzer(m).Analyze(context.Background(), Request{TargetRole: "SRE"})
	assert.Error(t, err)
	assert.Zero(t, m.CallCount())
}

func TestAnalyzerSchemaViolation(t *testing.T) {
	m := llm.NewMockProvider()
	require.NoError(t, m.AddJSON(map[string]any{"missingSkills": []string{"Rust"}, "roadmap": []any{}, "strategies": []string{}}))
	_, err := NewAnalyzer(m).Analyze(context.Background(), Request{TargetRole: "SRE", PreparationWeeks: 2})
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}
