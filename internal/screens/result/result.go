// Package result shows a graded exam: score band, weak topics and a
// question-by-question review.
package result

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// ResultScreen displays one stored exam record.
type ResultScreen struct {
	svc    screen.Services
	record exam.Record
	review int // question under review
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for rec.
func New(svc screen.Services, rec exam.Record) *ResultScreen {
	return &ResultScreen{svc: svc, record: rec}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Exam Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Review"},
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	case "right", "l", "down", "j":
		if s.review < len(s.record.Questions)-1 {
			s.review++
		}
	case "left", "h", "up", "k":
		if s.review > 0 {
			s.review--
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	r := s.record
	cw := components.ContentWidth(width)
	bandColor := theme.ExamBand(exam.ScoreBand(r.Score))

	score := lipgloss.NewStyle().Foreground(bandColor).Bold(true).
		Render(fmt.Sprintf("%d%%", r.Score))
	headline := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Width(cw).Render(r.ExamType.Name()),
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(score),
		theme.Subtitle.Width(cw).Render(bandLabel(exam.ScoreBand(r.Score))),
	)

	tileW := (cw - 6) / 3
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		components.StatTile("correct", fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions), theme.Body, tileW),
		components.StatTile("time", exam.FormatElapsed(time.Duration(r.TimeSpentSeconds)*time.Second), theme.Body, tileW),
		components.StatTile("AI usage", fmt.Sprintf("%d%%", r.AIUsage), theme.Body, tileW),
	)

	sections := []string{headline, tiles, s.renderWeakTopics()}
	if len(r.Questions) > 0 {
		sections = append(sections, components.Card(s.renderReview(cw-6), cw))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func bandLabel(b exam.Band) string {
	switch b {
	case exam.BandExcellent:
		return "Excellent work"
	case exam.BandFair:
		return "Getting there"
	}
	return "Needs more practice"
}

func (s *ResultScreen) renderWeakTopics() string {
	if len(s.record.WeakTopics) == 0 {
		return theme.Correct.Render("No weak topics, every question answered correctly.")
	}
	return lipgloss.NewStyle().Foreground(theme.Warning).
		Render("Review: " + strings.Join(s.record.WeakTopics, ", "))
}

func (s *ResultScreen) renderReview(width int) string {
	q := s.record.Questions[s.review]
	var b strings.Builder

	mark, style := "✗", theme.Incorrect
	if q.IsCorrect {
		mark, style = "✓", theme.Correct
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Question %d of %d · %ds", s.review+1, len(s.record.Questions), q.TimeTakenSeconds)))
	b.WriteString("\n")
	b.WriteString(style.Render(mark) + " " + theme.Body.Bold(true).Width(width-2).Render(q.Question))
	b.WriteString("\n\n")

	for _, opt := range q.Options {
		line := "   " + opt
		st := theme.Unselected
		switch {
		case opt == q.CorrectAnswer:
			line = " ✓ " + opt
			st = theme.Correct
		case opt == q.UserAnswer:
			line = " ✗ " + opt
			st = theme.Incorrect
		}
		b.WriteString(st.Render(line))
		b.WriteString("\n")
	}
	if q.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(width).Render(q.Explanation))
	}
	return strings.TrimRight(b.String(), "\n")
}
