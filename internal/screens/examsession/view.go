package examsession

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (s *ExamScreen) View(width, height int) string {
	var content string
	switch s.phase {
	case phaseGenerating:
		content = s.spinner.View() + " Preparing your " + string(s.examType) + " questions..."
	case phaseSaving:
		content = s.spinner.View() + " Grading and saving..."
	case phaseFailed, phaseSaveFailed:
		content = theme.ErrorText.Render(s.errMsg) + "\n\n" +
			theme.Hint.Render("Press R to retry or Esc to go back.")
	case phaseConfirmQuit:
		content = components.Card(
			theme.Body.Bold(true).Render("Abandon this exam?")+"\n\n"+
				theme.Hint.Render("Your answers will not be saved."),
			components.ContentWidth(width)/2+10,
		)
	default:
		content = s.renderQuestion(width)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ExamScreen) renderQuestion(width int) string {
	cw := components.ContentWidth(width)
	sess := s.session
	q := sess.Current()

	progress := fmt.Sprintf("Question %d of %d", sess.CurrentIndex()+1, sess.Len())
	timer := "⏱ " + exam.FormatElapsed(s.elapsed)
	gap := max(cw-lipgloss.Width(progress)-lipgloss.Width(timer), 1)
	top := theme.Subtitle.Render(progress) + strings.Repeat(" ", gap) +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(timer)

	var body strings.Builder
	if q.Topic != "" {
		body.WriteString(theme.Hint.Render(q.Topic))
		body.WriteString("\n")
	}
	body.WriteString(theme.Body.Bold(true).Width(cw - 6).Render(q.Question))
	body.WriteString("\n\n")
	body.WriteString(s.choices.View(cw - 6))

	sections := []string{
		top,
		components.Card(strings.TrimRight(body.String(), "\n"), cw),
		s.renderNavigator(),
		components.NewProgressBar(
			fmt.Sprintf("%d/%d answered", sess.AnsweredCount(), sess.Len()),
			float64(sess.AnsweredCount())/float64(sess.Len()), false, min(cw, 60),
		).View(),
	}
	if s.warning != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Warning).Render(s.warning))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderNavigator draws one numbered cell per question: the current one
// highlighted, answered ones tinted.
func (s *ExamScreen) renderNavigator() string {
	cells := make([]string, s.session.Len())
	for i := range cells {
		label := fmt.Sprintf(" %d ", i+1)
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		switch {
		case i == s.session.CurrentIndex():
			style = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true)
		case s.session.Answered(i):
			style = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Secondary)
		}
		cells[i] = style.Render(label)
	}
	return strings.Join(cells, " ")
}

func questionList(idx []int) string {
	nums := make([]string, len(idx))
	for i, n := range idx {
		nums[i] = fmt.Sprintf("%d", n+1)
	}
	return strings.Join(nums, ", ")
}
