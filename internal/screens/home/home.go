package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/dashboard"
	"github.com/abhisek/examprep/internal/screens/history"
	"github.com/abhisek/examprep/internal/screens/logform"
	"github.com/abhisek/examprep/internal/screens/picker"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

type statsLoadedMsg struct {
	Dashboard analytics.Dashboard
	Err       error
}

// HomeScreen is the main menu with a one-line summary of progress.
type HomeScreen struct {
	svc    screen.Services
	menu   components.Menu
	stats  *analytics.Dashboard
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// New creates the home screen.
func New(svc screen.Services) *HomeScreen {
	items := []components.MenuItem{
		{Label: "Take Exam", Hint: "timed mock exam", Action: func() tea.Cmd {
			return push(picker.New(svc))
		}},
		{Label: "Log Study", Hint: "record today's hours", Action: func() tea.Cmd {
			return push(logform.New(svc))
		}},
		{Label: "Dashboard", Hint: "trends and streak", Action: func() tea.Cmd {
			return push(dashboard.New(svc))
		}},
		{Label: "History", Hint: "past exams and logs", Action: func() tea.Cmd {
			return push(history.New(svc))
		}},
		{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{svc: svc, menu: components.NewMenu(items)}
}

// Init reloads the summary each time home becomes active again.
func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		d, err := svc.Dashboard(context.Background())
		return statsLoadedMsg{Dashboard: d, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err != nil {
			h.svc.Log.Warn("load home stats", zap.Error(msg.Err))
			h.errMsg = "Could not load your progress."
			return h, nil
		}
		h.stats = &msg.Dashboard
		h.errMsg = ""
		streak := msg.Dashboard.Streak
		return h, func() tea.Msg { return screen.StreakChangedMsg{Streak: streak} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	sections = append(sections,
		theme.Title.Width(cw).Render("Exam Prep"),
		theme.Subtitle.Width(cw).Render("Mock exams, study logs and progress tracking"),
	)

	switch {
	case h.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(h.errMsg))
	case h.stats != nil:
		sections = append(sections, components.Card(renderStats(h.stats), cw))
	}

	sections = append(sections, components.Card(h.menu.View(), cw))

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderStats(d *analytics.Dashboard) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	parts := []string{
		val.Render(fmt.Sprintf("%d", d.Streak)) + dim.Render(" day streak"),
		val.Render(fmt.Sprintf("%.1f h", d.ThisWeek.StudyHours)) + dim.Render(" this week"),
		val.Render(fmt.Sprintf("%d", d.Totals.Exams)) + dim.Render(" exams"),
		val.Render(fmt.Sprintf("%d%%", d.Totals.AvgScore)) + dim.Render(" avg"),
	}
	return strings.Join(parts, dim.Render("  ·  "))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
