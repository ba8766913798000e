package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/result"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

const (
	examLimit = 50
	logLimit  = 60
)

type tab int

const (
	tabExams tab = iota
	tabLogs
)

type historyLoadedMsg struct {
	Exams []exam.Record
	Logs  []studylog.Entry
	Err   error
}

// HistoryScreen lists past exams and study logs.
type HistoryScreen struct {
	svc      screen.Services
	exams    []exam.Record
	logs     []studylog.Entry
	tab      tab
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc screen.Services) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	exams, logs := s.svc.Exams, s.svc.Logs
	return func() tea.Msg {
		var msg historyLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() (err error) {
			msg.Exams, err = exams.List(ctx, store.QueryOpts{Limit: examLimit})
			return err
		})
		g.Go(func() (err error) {
			msg.Logs, err = logs.List(ctx, store.QueryOpts{Limit: logLimit})
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Exams/Logs"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Expand"},
	}
	if s.tab == tabExams {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Review"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HistoryScreen) rows() int {
	if s.tab == tabExams {
		return len(s.exams)
	}
	return len(s.logs)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.exams = msg.Exams
			s.logs = msg.Logs
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			s.tab = 1 - s.tab
			s.selected = 0
			s.expanded = make(map[int]bool)
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < s.rows()-1 {
				s.selected++
			}
		case "space", " ":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "enter":
			if s.tab == tabExams && s.selected < len(s.exams) {
				next := result.New(s.svc, s.exams[s.selected])
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTabs()))
	b.WriteString("\n\n")

	var lines []string
	if s.tab == tabExams {
		lines = s.examLines()
	} else {
		lines = s.logLines()
	}
	if len(lines) == 0 {
		empty := "No exams yet. Take one from the home screen!"
		if s.tab == tabLogs {
			empty = "No study logged yet."
		}
		lines = []string{lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(empty)}
	}
	for _, line := range lines {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true).Padding(0, 1)
	idle := lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 1)
	exams, logs := idle, idle
	if s.tab == tabExams {
		exams = active
	} else {
		logs = active
	}
	return exams.Render(fmt.Sprintf("Exams (%d)", len(s.exams))) + "  " +
		logs.Render(fmt.Sprintf("Study Logs (%d)", len(s.logs)))
}

func (s *HistoryScreen) rowStyle(i int) (lipgloss.Style, string) {
	if i == s.selected {
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "> "
	}
	return lipgloss.NewStyle().Foreground(theme.Text), "  "
}

func (s *HistoryScreen) examLines() []string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	var lines []string
	for i, r := range s.exams {
		style, prefix := s.rowStyle(i)
		score := lipgloss.NewStyle().Foreground(theme.ExamBand(exam.ScoreBand(r.Score))).
			Render(fmt.Sprintf("%3d%%", r.Score))
		line := fmt.Sprintf("%s%s  %-5s  %d/%d correct  %s",
			prefix, r.CreatedAt.Format("Jan 02, 2006"), r.ExamType, r.CorrectAnswers, r.TotalQuestions,
			exam.FormatElapsed(time.Duration(r.TimeSpentSeconds)*time.Second))
		lines = append(lines, style.Render(line)+"  "+score)

		if s.expanded[i] {
			weak := "no weak topics"
			if len(r.WeakTopics) > 0 {
				weak = "weak: " + strings.Join(r.WeakTopics, ", ")
			}
			lines = append(lines, dim.Render(fmt.Sprintf("    %s · AI usage %d%%", weak, r.AIUsage)))
		}
	}
	return lines
}

func (s *HistoryScreen) logLines() []string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	var lines []string
	for i, e := range s.logs {
		style, prefix := s.rowStyle(i)
		topics := strings.Join(e.Topics, ", ")
		if topics == "" {
			topics = "-"
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%s  %4.1fh  %s",
			prefix, e.Date.In(time.UTC).Format("Mon Jan 02"), e.Hours, topics)))

		if s.expanded[i] {
			notes := e.Notes
			if notes == "" {
				notes = "no notes"
			}
			for _, n := range strings.Split(notes, "\n") {
				lines = append(lines, dim.Render("    "+n))
			}
		}
	}
	return lines
}
