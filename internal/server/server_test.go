package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/questiongen"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

// Wednesday morning.
var now = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

type fixture struct {
	srv     *Server
	handler http.Handler
	store   *store.Store
	clock   *clock.Manual
	llm     *llm.MockProvider
}

func newFixture(t *testing.T, tweak func(*Deps, *Options)) *fixture {
	t.Helper()
	clk := clock.NewManual(now)
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), store.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	feedback := interview.NewService(interview.NewEvaluator(mock), st.InterviewRepo(), 4, zaptest.NewLogger(t))
	t.Cleanup(feedback.Close)

	deps := Deps{
		Logs:       st.StudyLogRepo(),
		Exams:      st.ExamRepo(),
		Interviews: st.InterviewRepo(),
		SkillGaps:  st.SkillGapRepo(),
		Generator:  questiongen.NewStaticGenerator(nil),
		Feedback:   feedback,
		Analyzer:   skillgap.NewAnalyzer(mock),
		Estimator:  exam.FixedEstimator(12),
		Clock:      clk,
		Log:        zaptest.NewLogger(t),
	}
	opts := DefaultOptions()
	opts.RateLimit = 100
	opts.Burst = 100
	if tweak != nil {
		tweak(&deps, &opts)
	}
	srv := New(deps, opts)
	return &fixture{srv: srv, handler: srv.Handler(), store: st, clock: clk, llm: mock}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestStudyLogs(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/study-logs", map[string]any{
		"hoursStudied": 2.5, "topicsCovered": []string{"Trees"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/study-logs", map[string]any{
		"date": "2025-06-11", "hoursStudied": 1.5, "topicsCovered": []string{"Graphs"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	merged := decodeBody[studylog.Entry](t, rec)
	assert.Equal(t, 4.0, merged.Hours)
	assert.Equal(t, []string{"Trees", "Graphs"}, merged.Topics)

	rec = f.do(t, http.MethodPost, "/study-logs", map[string]any{"date": "2025-06-11", "hoursStudied": 21})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "merged day over 24 hours")

	rec = f.do(t, http.MethodPost, "/study-logs", map[string]any{"topicsCovered": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "hours are required")

	rec = f.do(t, http.MethodPost, "/study-logs", map[string]any{"date": "11/06/2025", "hoursStudied": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/study-logs", map[string]any{"date": "2025-06-12", "hoursStudied": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "tomorrow is in the future")
	assert.Contains(t, decodeBody[errorBody](t, rec).Error, "future")

	rec = f.do(t, http.MethodGet, "/study-logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]studylog.Entry](t, rec), 1)
}

func TestExamSessionFlow(t *testing.T) {
	f := newFixture(t, nil)
	qs, err := questiongen.NewStaticGenerator(nil).Generate(context.Background(), exam.TypeDSA, 3)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/exam-sessions", map[string]any{"examType": "DSA", "count": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[sessionView](t, rec)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, qs[0].Question, view.Question.Question)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")
	base := "/exam-sessions/" + view.ID

	f.clock.Advance(20 * time.Second)
	rec = f.do(t, http.MethodPost, base+"/answer", map[string]string{"answer": qs[0].CorrectAnswer})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/answer", map[string]string{"answer": "not an option"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []int{1, 2}, decodeBody[errorBody](t, rec).Unanswered)

	rec = f.do(t, http.MethodPost, base+"/navigate", map[string]any{"action": "jump", "index": 99})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeBody[sessionView](t, rec).Current, "jump is clamped")

	rec = f.do(t, http.MethodPost, base+"/answer", map[string]string{"answer": qs[2].CorrectAnswer})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/navigate", map[string]any{"action": "previous"})
	require.Equal(t, http.StatusOK, rec.Code)
	var wrong string
	for _, o := range qs[1].Options {
		if o != qs[1].CorrectAnswer {
			wrong = o
			break
		}
	}
	rec = f.do(t, http.MethodPost, base+"/answer", map[string]string{"answer": wrong})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/navigate", map[string]any{"action": "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored := decodeBody[exam.Record](t, rec)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, 67, stored.Score)
	assert.Equal(t, 12, stored.AIUsage)
	assert.Equal(t, []string{qs[1].Topic}, stored.WeakTopics)
	assert.Equal(t, 20, stored.Questions[0].TimeTakenSeconds)

	rec = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "submitted sessions leave the registry")

	rec = f.do(t, http.MethodGet, "/exams/"+stored.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stored.ID, decodeBody[exam.Record](t, rec).ID)

	rec = f.do(t, http.MethodGet, "/exams/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rec.Body.String(), `examprep_exams_submitted_total{exam_type="DSA"} 1`)
}

// startAnswered starts a one-question session and answers it correctly.
func (f *fixture) startAnswered(t *testing.T) string {
	t.Helper()
	qs, err := questiongen.NewStaticGenerator(nil).Generate(context.Background(), exam.TypeDSA, 1)
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/exam-sessions", map[string]any{"examType": "DSA", "count": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody[sessionView](t, rec).ID
	rec = f.do(t, http.MethodPost, "/exam-sessions/"+id+"/answer", map[string]string{"answer": qs[0].CorrectAnswer})
	require.Equal(t, http.StatusOK, rec.Code)
	return id
}

func (f *fixture) storedExams(t *testing.T) []exam.Record {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/exams", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[[]exam.Record](t, rec)
}

func TestSubmitStoresResultOnce(t *testing.T) {
	f := newFixture(t, nil)
	id := f.startAnswered(t)

	f.srv.sessions.mu.Lock()
	ls := f.srv.sessions.sessions[id]
	f.srv.sessions.mu.Unlock()
	require.NotNil(t, ls)

	rec := f.do(t, http.MethodPost, "/exam-sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[exam.Record](t, rec)

	// A request that resolved the session before it left the registry is
	// still holding the same pointer once it gets the lock.
	f.srv.sessions.mu.Lock()
	f.srv.sessions.sessions[id] = ls
	f.srv.sessions.mu.Unlock()

	rec = f.do(t, http.MethodPost, "/exam-sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody[errorBody](t, rec).Error, first.ID)

	exams := f.storedExams(t)
	require.Len(t, exams, 1)
	assert.Equal(t, first.ID, exams[0].ID)
}

func TestConcurrentSubmitStoresResultOnce(t *testing.T) {
	f := newFixture(t, nil)
	id := f.startAnswered(t)

	const callers = 8
	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/exam-sessions/"+id+"/submit", nil)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict, http.StatusNotFound:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.storedExams(t), 1)
}

type failingGenerator struct{}

func (failingGenerator) Generate(_ context.Context, t exam.Type, _ int) ([]exam.QuestionSpec, error) {
	return nil, &exam.GenerationError{Type: t, Err: errors.New("model unavailable")}
}

func TestGenerationFailure(t *testing.T) {
	f := newFixture(t, func(d *Deps, _ *Options) { d.Generator = failingGenerator{} })

	rec := f.do(t, http.MethodPost, "/exam-sessions", map[string]any{"examType": "OS"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 0, f.srv.sessions.len())

	rec = f.do(t, http.MethodPost, "/ai/exams/generate", map[string]any{"examType": "OS"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = f.do(t, http.MethodPost, "/ai/exams/generate", map[string]any{"examType": "History"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateQuestions(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/ai/exams/generate", map[string]any{"examType": "SQL", "count": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Questions []exam.QuestionSpec `json:"questions"`
	}](t, rec)
	assert.Len(t, body.Questions, 4)
}

func TestCreateExamResult(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/exams", map[string]any{
		"examType": "CN", "score": 80, "accuracy": 80, "aiUsagePercentage": 5,
		"totalQuestions": 5, "correctAnswers": 4, "timeSpent": 300,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/exams", map[string]any{"examType": "CN", "score": 120})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/exams", map[string]any{
		"examType": "CN", "score": 90, "totalQuestions": 4, "correctAnswers": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "more correct answers than questions")

	rec = f.do(t, http.MethodPost, "/exams", map[string]any{"examType": "CN", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/exams?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/exams?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]exam.Record](t, rec), 1)
}

func TestCreateExamResultConsistency(t *testing.T) {
	graded := func(answer, correct string, isCorrect bool) map[string]any {
		return map[string]any{
			"question": "Q", "options": []string{"A", "B"}, "correctAnswer": correct,
			"userAnswer": answer, "isCorrect": isCorrect,
		}
	}
	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"counts only", map[string]any{"score": 50, "totalQuestions": 2, "correctAnswers": 1}, http.StatusCreated},
		{"negative total", map[string]any{"score": 0, "totalQuestions": -1, "correctAnswers": 0}, http.StatusBadRequest},
		{"negative correct", map[string]any{"score": 0, "totalQuestions": 2, "correctAnswers": -1}, http.StatusBadRequest},
		{"correct exceeds total", map[string]any{"score": 100, "totalQuestions": 2, "correctAnswers": 3}, http.StatusBadRequest},
		{"score disagrees with counts", map[string]any{"score": 90, "totalQuestions": 2, "correctAnswers": 1}, http.StatusBadRequest},
		{"ai usage out of range", map[string]any{"score": 50, "totalQuestions": 2, "correctAnswers": 1, "aiUsagePercentage": 101}, http.StatusBadRequest},
		{"graded questions agree", map[string]any{
			"score": 50, "totalQuestions": 2, "correctAnswers": 1,
			"questions": []any{graded("A", "A", true), graded("A", "B", false)},
		}, http.StatusCreated},
		{"question count mismatch", map[string]any{
			"score": 50, "totalQuestions": 2, "correctAnswers": 1,
			"questions": []any{graded("A", "A", true)},
		}, http.StatusBadRequest},
		{"isCorrect disagrees with answer", map[string]any{
			"score": 100, "totalQuestions": 2, "correctAnswers": 2,
			"questions": []any{graded("A", "A", true), graded("A", "B", true)},
		}, http.StatusBadRequest},
		{"graded tally disagrees with counts", map[string]any{
			"score": 100, "totalQuestions": 2, "correctAnswers": 2,
			"questions": []any{graded("A", "A", true), graded("A", "B", false)},
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tt.body["examType"] = "DBMS"
			rec := f.do(t, http.MethodPost, "/exams", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want != http.StatusCreated {
				assert.Empty(t, f.storedExams(t))
			}
		})
	}
}

func TestInterviewFeedback(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.llm.AddJSON(interview.Feedback{
		Strengths:       []string{"Clear communication"},
		Weaknesses:      []string{"Missed edge cases"},
		ImprovementTips: []string{"Walk through examples first"},
	}))

	rec := f.do(t, http.MethodPost, "/interviews", map[string]any{
		"sessionType": "Technical", "duration": 1800, "overallScore": 72,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[interview.Session](t, rec)

	rec = f.do(t, http.MethodPost, "/interviews", map[string]any{"sessionType": "Technical", "overallScore": 140})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/interviews/" + created.ID + "/feedback"
	rec = f.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[interview.Session](t, rec)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, []string{"Clear communication"}, got.Feedback.Strengths)

	rec = f.do(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/interviews/nope/feedback", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInterviewFeedbackProviderFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.llm.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})

	rec := f.do(t, http.MethodPost, "/interviews", map[string]any{"sessionType": "HR", "duration": 600, "overallScore": 50})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[interview.Session](t, rec)

	rec = f.do(t, http.MethodPost, "/interviews/"+created.ID+"/feedback", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSkillGapAnalyze(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.llm.AddJSON(skillgap.Analysis{
		MissingSkills: []string{"Kubernetes", "Go"},
		Roadmap:       []skillgap.Step{{Phase: "Weeks 1-2", Focus: "Containers", Tasks: []string{"Deploy a service"}}},
		Strategies:    []string{"Build in public"},
	}))

	rec := f.do(t, http.MethodPost, "/ai/skill-gap/analyze", map[string]any{
		"targetRole": "Platform Engineer", "currentSkills": []string{"go"}, "preparationWeeks": 6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rep := decodeBody[skillgap.Report](t, rec)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, []string{"Kubernetes"}, rep.MissingSkills)

	rec = f.do(t, http.MethodPost, "/ai/skill-gap/analyze", map[string]any{"targetRole": "", "preparationWeeks": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/skill-gaps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]skillgap.Report](t, rec), 1)
}

func TestAIRateLimit(t *testing.T) {
	f := newFixture(t, func(_ *Deps, o *Options) {
		o.RateLimit = 1
		o.Burst = 1
	})

	body := map[string]any{"examType": "OS", "count": 1}
	rec := f.do(t, http.MethodPost, "/ai/exams/generate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/ai/exams/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	f.clock.Advance(2 * time.Second)
	rec = f.do(t, http.MethodPost, "/ai/exams/generate", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/study-logs", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "other routes are not limited")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.store.StudyLogRepo().Upsert(ctx, studylog.Entry{Date: timewindow.Day(now), Hours: 2})
	require.NoError(t, err)
	_, err = f.store.StudyLogRepo().Upsert(ctx, studylog.Entry{Date: timewindow.Day(now).AddDays(-1), Hours: 3})
	require.NoError(t, err)
	_, err = f.store.ExamRepo().Save(ctx, exam.Result{ExamType: exam.TypeOS, Score: 70, Accuracy: 70, AIUsage: 10, CreatedAt: now})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decodeBody[analytics.Dashboard](t, rec)
	assert.Equal(t, 2, d.Streak)
	assert.Len(t, d.StudyHours, 14)
	assert.Equal(t, 1, d.Totals.Exams)
	assert.Equal(t, 70, d.Totals.AvgScore)
	assert.Equal(t, 5.0, d.ThisWeek.StudyHours)
	assert.True(t, strings.HasPrefix(d.GeneratedAt.Format(time.RFC3339), "2025-06-11"))
}
