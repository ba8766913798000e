// Package picker lists the exam tracks and starts the chosen one.
package picker

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/examsession"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// PickerScreen shows the exam catalog.
type PickerScreen struct {
	svc     screen.Services
	tracks  []exam.Info
	current int
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

func New(svc screen.Services) *PickerScreen {
	return &PickerScreen{svc: svc, tracks: exam.Catalog()}
}

func (p *PickerScreen) Init() tea.Cmd { return nil }

func (p *PickerScreen) Title() string { return "Choose Exam" }

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// Selected returns the highlighted track.
func (p *PickerScreen) Selected() exam.Info {
	return p.tracks[p.current]
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if p.current > 0 {
			p.current--
		}
	case "down", "j":
		if p.current < len(p.tracks)-1 {
			p.current++
		}
	case "enter":
		next := examsession.New(p.svc, p.Selected().Type)
		return p, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
	return p, nil
}

func (p *PickerScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, info := range p.tracks {
		name := fmt.Sprintf("%-5s %s", info.Type, info.Name)
		meta := fmt.Sprintf("%d min · %d questions", info.DurationMinutes, p.svc.QuestionCount)
		if i == p.current {
			b.WriteString(theme.Selected.Render("▸ " + name))
			b.WriteString("\n")
			b.WriteString(dim.Render("    " + meta + " · " + strings.Join(info.Topics, ", ")))
		} else {
			b.WriteString(theme.Unselected.Render("  " + name))
			b.WriteString("\n")
			b.WriteString(dim.Render("    " + meta))
		}
		b.WriteString("\n\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Width(cw).Render("Pick a mock exam"),
		"",
		components.Card(strings.TrimRight(b.String(), "\n"), cw),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
