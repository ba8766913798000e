// Package logform is the study-log entry form.
package logform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

const (
	fieldDate = iota
	fieldHours
	fieldTopics
	fieldNotes
	fieldCount
)

type savedMsg struct {
	Entry studylog.Entry
	Err   error
}

// FormScreen collects one day's study log.
type FormScreen struct {
	svc    screen.Services
	inputs [fieldCount]components.TextInput
	focus  int
	saving bool
	errMsg string
}

var _ screen.Screen = (*FormScreen)(nil)
var _ screen.KeyHintProvider = (*FormScreen)(nil)

// New creates the form with the date prefilled to today.
func New(svc screen.Services) *FormScreen {
	s := &FormScreen{svc: svc}
	s.inputs[fieldDate] = components.NewTextInput("Date", "YYYY-MM-DD", false, 10)
	s.inputs[fieldHours] = components.NewTextInput("Hours studied", "2.5", true, 4)
	s.inputs[fieldTopics] = components.NewTextInput("Topics", "Trees, Graphs", false, 200)
	s.inputs[fieldNotes] = components.NewTextInput("Notes", "optional", false, 2000)
	s.inputs[fieldDate].Model.SetValue(timewindow.Today(svc.Clock).String())
	return s
}

func (s *FormScreen) Init() tea.Cmd {
	return s.setFocus(fieldHours)
}

func (s *FormScreen) Title() string {
	return "Log Study"
}

func (s *FormScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Next/Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *FormScreen) setFocus(i int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (i + fieldCount) % fieldCount
	return s.inputs[s.focus].Focus()
}

func (s *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.svc.Log.Warn("save study log", zap.Error(msg.Err))
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.svc.Log.Info("study log saved",
			zap.String("date", msg.Entry.Date.String()),
			zap.Float64("hours", msg.Entry.Hours))
		return s, func() tea.Msg { return router.PopToRootMsg{} }

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab", "up":
			return s, s.setFocus(s.focus - 1)
		case "enter":
			if s.focus < fieldCount-1 {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		case "ctrl+s":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

// entry validates the fields and builds the entry to store. Field errors
// are attached to their inputs.
func (s *FormScreen) entry() (studylog.Entry, bool) {
	for i := range s.inputs {
		s.inputs[i].Err = ""
	}
	s.errMsg = ""
	ok := true

	date, err := timewindow.ParseDay(s.inputs[fieldDate].Value())
	if err != nil {
		s.inputs[fieldDate].Err = "use YYYY-MM-DD"
		ok = false
	} else if date.After(timewindow.Today(s.svc.Clock)) {
		s.inputs[fieldDate].Err = "date is in the future"
		ok = false
	}

	hours, err := s.inputs[fieldHours].FloatValue()
	switch {
	case err != nil:
		s.inputs[fieldHours].Err = "enter a number of hours"
		ok = false
	case studylog.ValidateFormHours(hours) != nil:
		s.inputs[fieldHours].Err = strings.TrimPrefix(
			studylog.ValidateFormHours(hours).Error(), studylog.ErrInvalidEntry.Error()+": ")
		ok = false
	}

	e := studylog.Entry{
		Date:   date,
		Hours:  hours,
		Topics: studylog.ParseTopics(s.inputs[fieldTopics].Value()),
		Notes:  s.inputs[fieldNotes].Value(),
	}
	if ok {
		if err := e.Validate(); err != nil {
			s.errMsg = err.Error()
			ok = false
		}
	}
	return e, ok
}

func (s *FormScreen) submit() tea.Cmd {
	e, ok := s.entry()
	if !ok {
		return nil
	}
	s.saving = true
	repo := s.svc.Logs
	return func() tea.Msg {
		stored, err := repo.Upsert(context.Background(), e)
		if errors.Is(err, studylog.ErrInvalidEntry) {
			err = fmt.Errorf("that day already has entries; together they would exceed %d hours", studylog.MaxHours)
		}
		return savedMsg{Entry: stored, Err: err}
	}
}

func (s *FormScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	fields := make([]string, 0, fieldCount)
	for _, in := range s.inputs {
		fields = append(fields, in.View())
	}
	body := strings.Join(fields, "\n\n")

	sections := []string{
		theme.Title.Width(cw).Render("How much did you study?"),
		theme.Subtitle.Width(cw).Render("Logging the same day again adds to it."),
		components.Card(body, cw),
	}
	switch {
	case s.saving:
		sections = append(sections, theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
