// Package examsession runs one timed mock exam: generation, answering,
// navigation, submission and saving the result.
package examsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/result"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

const generateTimeout = 2 * time.Minute

type phase int

const (
	phaseGenerating phase = iota
	phaseFailed
	phaseActive
	phaseConfirmQuit
	phaseSaving
	phaseSaveFailed
)

// questionsReadyMsg carries the generated batch or the generation error.
type questionsReadyMsg struct {
	Questions []exam.QuestionSpec
	Err       error
}

// elapsedMsg is one tick of the session timer.
type elapsedMsg time.Duration

// savedMsg reports the outcome of persisting the result.
type savedMsg struct {
	Record exam.Record
	Err    error
}

// ExamScreen implements screen.Screen for a running exam.
type ExamScreen struct {
	svc      screen.Services
	examType exam.Type

	phase   phase
	spinner spinner.Model
	session *exam.Session
	ticker  *exam.Ticker
	elapsed time.Duration
	choices components.ChoiceList

	warning string
	errMsg  string
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)
var _ screen.EscapeInterceptor = (*ExamScreen)(nil)

// New creates an exam screen that generates its questions on Init.
func New(svc screen.Services, t exam.Type) *ExamScreen {
	return &ExamScreen{
		svc:      svc,
		examType: t,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *ExamScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.generate())
}

func (s *ExamScreen) Title() string {
	return s.examType.Name()
}

// Session exposes the running session, nil while generating.
func (s *ExamScreen) Session() *exam.Session {
	return s.session
}

// InterceptsEscape keeps Esc from popping a running exam without asking.
func (s *ExamScreen) InterceptsEscape() bool {
	return s.phase == phaseActive || s.phase == phaseConfirmQuit || s.phase == phaseSaving
}

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseConfirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon exam"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseFailed, phaseSaveFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseActive:
		return []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "←→", Description: "Prev/Next"},
			{Key: "S", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *ExamScreen) generate() tea.Cmd {
	gen := s.svc.Generator
	t := s.examType
	count := s.svc.QuestionCount
	if count <= 0 {
		count = exam.DefaultQuestionCount
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		qs, err := gen.Generate(ctx, t, count)
		return questionsReadyMsg{Questions: qs, Err: err}
	}
}

func waitForTick(t *exam.Ticker) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-t.C()
		if !ok {
			return nil
		}
		return elapsedMsg(d)
	}
}

func (s *ExamScreen) save() tea.Cmd {
	res, ok := s.session.Result()
	if !ok {
		return nil
	}
	repo := s.svc.Exams
	return func() tea.Msg {
		rec, err := repo.Save(context.Background(), res)
		return savedMsg{Record: rec, Err: err}
	}
}

func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if s.phase != phaseGenerating && s.phase != phaseSaving {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case questionsReadyMsg:
		return s.handleQuestions(msg)

	case elapsedMsg:
		if s.phase != phaseActive && s.phase != phaseConfirmQuit {
			return s, nil
		}
		s.elapsed = time.Duration(msg)
		return s, waitForTick(s.ticker)

	case savedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ExamScreen) handleQuestions(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.svc.Log.Warn("generate exam questions", zap.String("exam_type", string(s.examType)), zap.Error(msg.Err))
		s.phase = phaseFailed
		s.errMsg = describeGenerationError(msg.Err)
		return s, nil
	}
	sess, err := exam.NewSession(s.examType, msg.Questions, s.svc.Clock)
	if err != nil {
		s.phase = phaseFailed
		s.errMsg = err.Error()
		return s, nil
	}
	s.session = sess
	s.phase = phaseActive
	s.errMsg = ""
	s.loadChoices()
	s.ticker = exam.StartTicker(sess.StartedAt(), s.svc.Clock)
	return s, waitForTick(s.ticker)
}

func describeGenerationError(err error) string {
	var gerr *exam.GenerationError
	if errors.As(err, &gerr) {
		return fmt.Sprintf("Could not prepare the %s exam: %v", gerr.Type, gerr.Err)
	}
	return "Could not prepare the exam: " + err.Error()
}

func (s *ExamScreen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.svc.Log.Error("save exam result", zap.Error(msg.Err))
		s.phase = phaseSaveFailed
		s.errMsg = "Could not save your result: " + msg.Err.Error()
		return s, nil
	}
	s.svc.Log.Info("exam submitted",
		zap.String("id", msg.Record.ID),
		zap.String("exam_type", string(msg.Record.ExamType)),
		zap.Int("score", msg.Record.Score))
	next := result.New(s.svc, msg.Record)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *ExamScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseFailed:
		if key == "r" || key == "R" {
			s.phase = phaseGenerating
			s.errMsg = ""
			return s, tea.Batch(s.spinner.Tick, s.generate())
		}
		return s, nil

	case phaseSaveFailed:
		if key == "r" || key == "R" {
			s.phase = phaseSaving
			s.errMsg = ""
			return s, tea.Batch(s.spinner.Tick, s.save())
		}
		return s, nil

	case phaseConfirmQuit:
		switch key {
		case "y", "Y":
			s.stopTicker()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.phase = phaseActive
		}
		return s, nil

	case phaseActive:
		return s.handleActiveKey(key, msg)
	}
	return s, nil
}

func (s *ExamScreen) handleActiveKey(key string, msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch key {
	case "esc":
		s.phase = phaseConfirmQuit
		return s, nil
	case "enter":
		if err := s.session.Answer(s.choices.Current()); err != nil {
			s.warning = err.Error()
			return s, nil
		}
		s.warning = ""
		if s.session.CurrentIndex() < s.session.Len()-1 {
			_ = s.session.Next()
		}
		s.loadChoices()
		return s, nil
	case "right", "l", "n":
		_ = s.session.Next()
		s.loadChoices()
		return s, nil
	case "left", "h", "p":
		_ = s.session.Previous()
		s.loadChoices()
		return s, nil
	case "s", "S":
		return s.submit()
	}

	var handled bool
	s.choices, handled = s.choices.Update(msg)
	if handled {
		s.warning = ""
	}
	return s, nil
}

func (s *ExamScreen) submit() (screen.Screen, tea.Cmd) {
	_, err := s.session.Submit(s.svc.Estimator)
	var incomplete *exam.IncompleteSessionError
	switch {
	case errors.As(err, &incomplete):
		s.warning = fmt.Sprintf("%d question(s) unanswered: %s",
			len(incomplete.Unanswered), questionList(incomplete.Unanswered))
		if err := s.session.JumpTo(incomplete.Unanswered[0]); err == nil {
			s.loadChoices()
		}
		return s, nil
	case err != nil:
		s.warning = err.Error()
		return s, nil
	}
	s.stopTicker()
	s.warning = ""
	s.phase = phaseSaving
	return s, tea.Batch(s.spinner.Tick, s.save())
}

func (s *ExamScreen) loadChoices() {
	q := s.session.Current()
	marked, _ := s.session.AnswerFor(s.session.CurrentIndex())
	s.choices = components.NewChoiceList(q.Options, marked)
}

func (s *ExamScreen) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
