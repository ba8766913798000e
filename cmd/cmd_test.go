package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
)

func sampleInput() analytics.Input {
	at := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	return analytics.Input{
		Logs: []studylog.Entry{
			{Date: civil.Date{Year: 2025, Month: 6, Day: 10}, Hours: 2.5, Topics: []string{"Trees"}},
		},
		Exams: []exam.Record{{
			ID: "e1",
			Result: exam.Result{
				ExamType: exam.TypeOS, Score: 80, Accuracy: 80, TotalQuestions: 5, CorrectAnswers: 4,
				WeakTopics: []string{"Memory"}, CreatedAt: at,
			},
		}},
		Interviews: []interview.Session{{ID: "i1", SessionType: "technical", OverallScore: 70, CreatedAt: at}},
	}
}

func TestWriteExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	doc := newExportDoc(sampleInput(), time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, writeExport(&buf, "json", doc))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got["studyLogs"], 1)
	assert.Len(t, got["exams"], 1)
	assert.Len(t, got["interviews"], 1)
	assert.Contains(t, buf.String(), `"date": "2025-06-10"`)
	assert.Contains(t, buf.String(), `"hoursStudied": 2.5`)
}

func TestWriteExport_YAML(t *testing.T) {
	var buf bytes.Buffer
	doc := newExportDoc(sampleInput(), time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, writeExport(&buf, "yaml", doc))

	out := buf.String()
	assert.Contains(t, out, "studyLogs:")
	assert.Contains(t, out, "2025-06-10")
	assert.Contains(t, out, "examType: OS")
	assert.Contains(t, out, "sessionType: technical")
	// Embedded results are flattened, not nested under a result key.
	assert.NotContains(t, out, "result:")
}

func TestWriteExport_UnknownFormat(t *testing.T) {
	err := writeExport(&bytes.Buffer{}, "toml", exportDoc{})
	assert.ErrorContains(t, err, "unknown export format")
}

func TestWriteStats(t *testing.T) {
	d := analytics.Dashboard{
		Streak: 3,
		Totals: analytics.Totals{StudyHours: 12.5, Exams: 2, AvgScore: 75},
		Comparisons: analytics.CompareWeeks(
			analytics.WeeklyMetrics{StudyHours: 6},
			analytics.WeeklyMetrics{StudyHours: 4},
		),
	}
	var buf bytes.Buffer
	writeStats(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "3 days")
	assert.Contains(t, out, "12.5 hrs")
	assert.Contains(t, out, "2 (avg 75%)")
	assert.Contains(t, out, "▲ 50.0%")
	assert.NotContains(t, out, "Recent Exams", "no score table without exams")
}

func TestFormatTrend(t *testing.T) {
	assert.Equal(t, "–", formatTrend(analytics.Compare(5, 0, true)))
	assert.Equal(t, "▼ 50.0%", formatTrend(analytics.Compare(2, 4, false)))
	assert.True(t, strings.HasPrefix(formatTrend(analytics.Compare(3, 2, true)), "▲"))
}

func llmCall(id int64, purpose string, ok bool) store.LLMEvent {
	return store.LLMEvent{
		ID:        id,
		Timestamp: time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC),
		RequestEvent: llm.RequestEvent{
			Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: purpose,
			InputTokens: 1200, OutputTokens: 300, LatencyMs: 1500, Success: ok,
		},
	}
}

func TestFilterCalls(t *testing.T) {
	events := []store.LLMEvent{
		llmCall(5, llm.PurposeSkillGap, true),
		llmCall(4, llm.PurposeQuestionGen, false),
		llmCall(3, llm.PurposeQuestionGen, true),
		llmCall(2, llm.PurposeQuestionGen, true),
		llmCall(1, llm.PurposeInterviewFeedback, false),
	}

	got := filterCalls(events, llm.PurposeQuestionGen, false, 2)
	require.Len(t, got, 2, "limit applies after filtering")
	assert.Equal(t, int64(4), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	failed := filterCalls(events, "", true, 0)
	require.Len(t, failed, 2)
	assert.Equal(t, int64(1), failed[1].ID)

	assert.Len(t, filterCalls(events, "", false, 0), 5)
}

func TestWriteCalls(t *testing.T) {
	failed := llmCall(7, llm.PurposeInterviewFeedback, false)
	failed.ErrorMessage = "rate limited"
	var buf bytes.Buffer
	writeCalls(&buf, []store.LLMEvent{llmCall(8, llm.PurposeQuestionGen, true), failed})
	out := buf.String()

	assert.Contains(t, out, "Exam questions")
	assert.Contains(t, out, "Interview feedback")
	assert.Contains(t, out, "1200/300")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "failed: rate limited")
}

func TestWriteCall(t *testing.T) {
	e := llmCall(3, llm.PurposeSkillGap, true)
	e.RequestBody = `{"role":"Backend Engineer"}`
	var buf bytes.Buffer
	writeCall(&buf, e)
	out := buf.String()

	assert.Contains(t, out, "Call #3")
	assert.Contains(t, out, "Skill-gap analysis")
	assert.Contains(t, out, "anthropic / claude-haiku-4-5")
	assert.Contains(t, out, `{"role":"Backend Engineer"}`)
	assert.Contains(t, out, "(not recorded)", "reply was not captured")
}

func TestWriteUsage(t *testing.T) {
	byPurpose := []store.LLMUsage{
		{Key: llm.PurposeQuestionGen, Calls: 3, InputTokens: 900, OutputTokens: 300, AvgLatencyMs: 2000},
		{Key: "unknown", Calls: 1, InputTokens: 100, OutputTokens: 50},
	}
	byModel := []store.LLMUsage{
		{Key: "claude-haiku-4-5", Calls: 3, InputTokens: 1_000_000},
		{Key: "local-model", Calls: 1},
	}
	var buf bytes.Buffer
	writeUsage(&buf, byPurpose, byModel)
	out := buf.String()

	assert.Contains(t, out, "Exam questions")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "unknown", "unmapped purposes are shown as recorded")
	assert.Contains(t, out, "$1.00")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Total (priced models only)")
	assert.Contains(t, out, "No price list for: local-model")
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "Exam questions", featureName(llm.PurposeQuestionGen))
	assert.Equal(t, "custom", featureName("custom"))
	assert.Equal(t, []string{llm.PurposeInterviewFeedback, llm.PurposeQuestionGen, llm.PurposeSkillGap}, knownPurposes())
}
