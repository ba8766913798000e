// Package server exposes the exam-prep engine over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/questiongen"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/store"
)

// SkillGapAnalyzer produces the generated part of a skill-gap report.
type SkillGapAnalyzer interface {
	Analyze(ctx context.Context, req skillgap.Request) (skillgap.Analysis, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Logs       store.StudyLogRepo
	Exams      store.ExamRepo
	Interviews store.InterviewRepo
	SkillGaps  store.SkillGapRepo

	Generator questiongen.Generator
	Feedback  *interview.Service
	Analyzer  SkillGapAnalyzer
	Estimator exam.AIUsageEstimator

	Clock clock.Clock
	Log   *zap.Logger
}

// Options tunes request handling.
type Options struct {
	QuestionCount int
	WeekStart     time.Weekday

	// RateLimit and Burst bound requests per client to the /ai endpoints
	// and to exam-session creation, which also calls the model.
	RateLimit float64
	Burst     int

	// SessionTTL drops exam sessions idle for longer than this.
	SessionTTL time.Duration
}

// DefaultOptions returns the settings used by `examprep serve`.
func DefaultOptions() Options {
	return Options{
		QuestionCount: exam.DefaultQuestionCount,
		WeekStart:     time.Sunday,
		RateLimit:     1,
		Burst:         3,
		SessionTTL:    6 * time.Hour,
	}
}

// Server holds the routes and in-memory exam sessions.
type Server struct {
	deps     Deps
	opts     Options
	log      *zap.Logger
	metrics  *Metrics
	sessions *registry
	limiter  *clientLimiter
}

// New builds a server. Deps.Clock and Deps.Log may be nil.
func New(deps Deps, opts Options) *Server {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = exam.DefaultQuestionCount
	}
	return &Server{
		deps:     deps,
		opts:     opts,
		log:      deps.Log,
		metrics:  NewMetrics(),
		sessions: newRegistry(deps.Clock, opts.SessionTTL),
		limiter:  newClientLimiter(opts.RateLimit, opts.Burst, deps.Clock),
	}
}

// Metrics returns the server's Prometheus collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Get("/study-logs", s.handleListStudyLogs)
	r.Post("/study-logs", s.handleCreateStudyLog)

	r.Get("/exams", s.handleListExams)
	r.Post("/exams", s.handleCreateExam)
	r.Get("/exams/{id}", s.handleGetExam)

	r.Route("/exam-sessions", func(r chi.Router) {
		r.With(s.rateLimit).Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/answer", s.handleAnswer)
		r.Post("/{id}/navigate", s.handleNavigate)
		r.Post("/{id}/submit", s.handleSubmit)
	})

	r.Get("/interviews", s.handleListInterviews)
	r.Post("/interviews", s.handleCreateInterview)
	r.Get("/interviews/{id}", s.handleGetInterview)
	r.Post("/interviews/{id}/feedback", s.handleInterviewFeedback)

	r.Get("/skill-gaps", s.handleListSkillGaps)
	r.Post("/skill-gaps", s.handleCreateSkillGap)

	r.Route("/ai", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/exams/generate", s.handleGenerateQuestions)
		r.Post("/skill-gap/analyze", s.handleAnalyzeSkillGap)
	})

	r.Get("/analytics/dashboard", s.handleDashboard)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}
