package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/exam"
)

// questionView is a question as shown to the candidate, without the answer.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Topic    string   `json:"topic,omitempty"`
}

type sessionView struct {
	ID             string       `json:"id"`
	ExamType       exam.Type    `json:"examType"`
	State          string       `json:"state"`
	Current        int          `json:"current"`
	Total          int          `json:"total"`
	Question       questionView `json:"question"`
	Answer         string       `json:"answer,omitempty"`
	Answered       []bool       `json:"answered"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
}

func viewOf(ls *liveSession) sessionView {
	sess := ls.session
	q := sess.Current()
	answered := make([]bool, sess.Len())
	for i := range answered {
		answered[i] = sess.Answered(i)
	}
	answer, _ := sess.AnswerFor(sess.CurrentIndex())
	return sessionView{
		ID:             ls.id,
		ExamType:       sess.Type(),
		State:          sess.State().String(),
		Current:        sess.CurrentIndex(),
		Total:          sess.Len(),
		Question:       questionView{Question: q.Question, Options: q.Options, Topic: q.Topic},
		Answer:         answer,
		Answered:       answered,
		ElapsedSeconds: int(sess.Elapsed().Seconds()),
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, qs, err := s.generate(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := exam.NewSession(t, qs, s.deps.Clock)
	if err != nil {
		s.writeError(w, r, &exam.GenerationError{Type: t, Err: err})
		return
	}
	ls := s.sessions.add(sess)
	s.metrics.activeSessions.Set(float64(s.sessions.len()))
	s.log.Info("exam session started",
		zap.String("session_id", ls.id),
		zap.String("exam_type", string(t)),
		zap.Int("questions", sess.Len()))

	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusCreated, viewOf(ls))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, viewOf(ls))
}

type answerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ls, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer ls.mu.Unlock()
	if err := ls.session.Answer(req.Answer); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(ls))
}

type navigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next previous jump"`
	Index  int    `json:"index"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ls, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer ls.mu.Unlock()

	switch req.Action {
	case "next":
		err = ls.session.Next()
	case "previous":
		err = ls.session.Previous()
	case "jump":
		err = ls.session.JumpTo(req.Index)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(ls))
}

// handleSubmit grades the session and stores the result. The session is
// dropped from the registry only once the result is persisted, so a failed
// save can be retried.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ls, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer ls.mu.Unlock()
	if ls.savedID != "" {
		s.writeError(w, r, fmt.Errorf("session %s already stored as exam %s: %w", ls.id, ls.savedID, exam.ErrInvalidState))
		return
	}

	res, ok := ls.session.Result()
	if !ok {
		res, err = ls.session.Submit(s.deps.Estimator)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	rec, err := s.deps.Exams.Save(r.Context(), res)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("session %s: %w", ls.id, err))
		return
	}
	ls.savedID = rec.ID
	s.sessions.remove(ls.id)
	s.metrics.activeSessions.Set(float64(s.sessions.len()))
	s.metrics.examSubmitted(string(rec.ExamType), rec.Score)
	s.log.Info("exam submitted",
		zap.String("session_id", ls.id),
		zap.String("exam_id", rec.ID),
		zap.Int("score", rec.Score))
	writeJSON(w, http.StatusOK, rec)
}
