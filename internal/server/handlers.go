package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

// queryOpts reads limit, offset, from and to (YYYY-MM-DD) query parameters.
func queryOpts(r *http.Request) (store.QueryOpts, error) {
	var opts store.QueryOpts
	q := r.URL.Query()
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return opts, badRequest("%s must be a non-negative integer", name)
			}
			*dst = n
		}
	}
	if v := q.Get("from"); v != "" {
		d, err := timewindow.ParseDay(v)
		if err != nil {
			return opts, badRequest("from: %v", err)
		}
		opts.From = d.In(time.Local)
	}
	if v := q.Get("to"); v != "" {
		d, err := timewindow.ParseDay(v)
		if err != nil {
			return opts, badRequest("to: %v", err)
		}
		opts.To = d.In(time.Local).Add(24*time.Hour - time.Nanosecond)
	}
	return opts, nil
}

// Study logs

type studyLogRequest struct {
	Date   string   `json:"date"`
	Hours  *float64 `json:"hoursStudied" validate:"required"`
	Topics []string `json:"topicsCovered"`
	Notes  string   `json:"notes"`
}

func (s *Server) handleListStudyLogs(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logs, err := s.deps.Logs.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCreateStudyLog(w http.ResponseWriter, r *http.Request) {
	var req studyLogRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	today := timewindow.Today(s.deps.Clock)
	day := today
	if req.Date != "" {
		d, err := timewindow.ParseDay(req.Date)
		if err != nil {
			s.writeError(w, r, badRequest("date: %v", err))
			return
		}
		day = d
	}
	if day.After(today) {
		s.writeError(w, r, badRequest("date %s is in the future", day))
		return
	}
	entry := studylog.Entry{Date: day, Hours: *req.Hours, Topics: req.Topics, Notes: req.Notes}
	stored, err := s.deps.Logs.Upsert(r.Context(), entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Exams

func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.deps.Exams.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetExam(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Exams.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCreateExam stores a result graded by a client that ran the exam
// itself.
func (s *Server) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var res exam.Result
	if err := decode(r, &res); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := exam.ParseType(string(res.ExamType)); err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	if err := res.Validate(); err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = s.deps.Clock.Now()
	}
	rec, err := s.deps.Exams.Save(r.Context(), res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.examSubmitted(string(rec.ExamType), rec.Score)
	writeJSON(w, http.StatusCreated, rec)
}

type generateRequest struct {
	ExamType string `json:"examType" validate:"required"`
	Count    int    `json:"count" validate:"gte=0,lte=50"`
}

func (s *Server) generate(r *http.Request, req generateRequest) (exam.Type, []exam.QuestionSpec, error) {
	t, err := exam.ParseType(req.ExamType)
	if err != nil {
		return "", nil, badRequest("%v", err)
	}
	count := req.Count
	if count == 0 {
		count = s.opts.QuestionCount
	}
	qs, err := s.deps.Generator.Generate(r.Context(), t, count)
	if err != nil {
		return t, nil, err
	}
	return t, qs, nil
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	_, qs, err := s.generate(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

// Interviews

type interviewRequest struct {
	SessionType     string `json:"sessionType"`
	DurationSeconds int    `json:"duration"`
	OverallScore    int    `json:"overallScore"`
	Notes           string `json:"notes"`
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Interviews.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var req interviewRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.deps.Interviews.Save(r.Context(), interview.Session{
		SessionType:     req.SessionType,
		DurationSeconds: req.DurationSeconds,
		OverallScore:    req.OverallScore,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleInterviewFeedback evaluates an interview and stores the feedback.
// With ?async=true the request is queued and 202 is returned at once.
func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.writeError(w, r, interview.ErrServiceClosed)
		return
	}
	sess, err := s.deps.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		err := s.deps.Feedback.Request(r.Context(), sess, nil)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "id": sess.ID})
		return
	}

	fb, err := s.deps.Feedback.Evaluate(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, upstream(err))
		return
	}
	sess.Feedback = &fb
	writeJSON(w, http.StatusOK, sess)
}

// upstream tags errors that did not come from local storage as failures of
// the AI collaborator.
func upstream(err error) error {
	var persist *exam.PersistenceError
	if errors.As(err, &persist) ||
		errors.Is(err, interview.ErrFeedbackExists) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, errBadRequest) {
		return err
	}
	return fmt.Errorf("%w: %w", errUpstream, err)
}

// Skill gaps

func (s *Server) handleListSkillGaps(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.SkillGaps.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateSkillGap stores a report produced elsewhere.
func (s *Server) handleCreateSkillGap(w http.ResponseWriter, r *http.Request) {
	var rep skillgap.Report
	if err := decode(r, &rep); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep.ID = ""
	stored, err := s.deps.SkillGaps.Save(r.Context(), rep)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// handleAnalyzeSkillGap runs the analyzer and stores the report.
func (s *Server) handleAnalyzeSkillGap(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analyzer == nil {
		s.writeError(w, r, fmt.Errorf("%w: skill-gap analysis is not configured", errUpstream))
		return
	}
	var req skillgap.Request
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	analysis, err := s.deps.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, upstream(err))
		return
	}
	stored, err := s.deps.SkillGaps.Save(r.Context(), skillgap.Report{Request: req, Analysis: analysis})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Analytics

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	in, err := store.LoadInput(r.Context(), s.deps.Logs, s.deps.Exams, s.deps.Interviews, s.deps.SkillGaps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := analytics.DefaultOptions()
	opts.WeekStart = s.opts.WeekStart
	dash := analytics.Build(in, s.deps.Clock, opts)
	s.log.Debug("dashboard built", zap.Int("exams", len(in.Exams)), zap.Int("streak", dash.Streak))
	writeJSON(w, http.StatusOK, dash)
}
