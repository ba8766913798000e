// Package dashboard renders the drift dashboard: stat tiles, two weeks of
// study hours, week-over-week trends and recent activity.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

type dashboardLoadedMsg struct {
	Dashboard analytics.Dashboard
	Err       error
}

// DashboardScreen shows the derived analytics.
type DashboardScreen struct {
	svc    screen.Services
	data   *analytics.Dashboard
	errMsg string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

func New(svc screen.Services) *DashboardScreen {
	return &DashboardScreen{svc: svc}
}

func (s *DashboardScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		d, err := svc.Dashboard(context.Background())
		return dashboardLoadedMsg{Dashboard: d, Err: err}
	}
}

func (s *DashboardScreen) Title() string {
	return "Dashboard"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.Err != nil {
			s.svc.Log.Error("load dashboard", zap.Error(msg.Err))
			s.errMsg = "Could not load analytics: " + msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.data = &msg.Dashboard
		streak := msg.Dashboard.Streak
		return s, func() tea.Msg { return screen.StreakChangedMsg{Streak: streak} }
	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *DashboardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.ErrorText.Render(s.errMsg))
	}
	if s.data == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Crunching numbers..."))
	}

	d := s.data
	cw := components.ContentWidth(width)
	sections := []string{renderTiles(d, cw, layout.IsCompactWidth(width))}
	if line := renderInterviews(d.Totals); line != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(cw, lipgloss.Center, line))
	}
	sections = append(sections,
		components.Card(renderStudyHours(d, cw-6), cw),
		components.Card(renderComparisons(d.Comparisons), cw),
	)
	if len(d.RecentActivity) > 0 && !layout.IsCompactHeight(height) {
		sections = append(sections, components.Card(renderActivity(d.RecentActivity), cw))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

// renderTiles lays the four stat tiles out in a row, or two rows of two on
// narrow terminals.
func renderTiles(d *analytics.Dashboard, cw int, compact bool) string {
	perRow := 4
	if compact {
		perRow = 2
	}
	tileW := (cw - 2*perRow) / perRow
	scoreStyle := theme.Body
	if d.Totals.Exams > 0 {
		scoreStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	}
	tiles := []string{
		components.StatTile("day streak", fmt.Sprintf("%d", d.Streak), lipgloss.NewStyle().Foreground(theme.Accent), tileW),
		components.StatTile("hours this week", fmt.Sprintf("%.1f", d.ThisWeek.StudyHours), theme.Body, tileW),
		components.StatTile("exams taken", fmt.Sprintf("%d", d.Totals.Exams), theme.Body, tileW),
		components.StatTile("avg score", fmt.Sprintf("%d%%", d.Totals.AvgScore), scoreStyle, tileW),
	}
	var rows []string
	for i := 0; i < len(tiles); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles[i:i+perRow]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderInterviews is a one-line summary of mock interviews, empty when
// none are recorded.
func renderInterviews(t analytics.Totals) string {
	if t.Interviews == 0 {
		return ""
	}
	avg := lipgloss.NewStyle().Foreground(theme.InterviewBand(interview.ScoreBand(t.AvgInterviewScore))).
		Render(fmt.Sprintf("%d%% avg", t.AvgInterviewScore))
	line := fmt.Sprintf("%d mock interviews · ", t.Interviews)
	if t.SkillGapReports > 0 {
		return theme.Body.Render(line) + avg + theme.Hint.Render(fmt.Sprintf(" · %d skill-gap reports", t.SkillGapReports))
	}
	return theme.Body.Render(line) + avg
}

// renderStudyHours draws one horizontal bar per day, scaled to the busiest
// day of the window.
func renderStudyHours(d *analytics.Dashboard, width int) string {
	peak := 0.0
	for _, p := range d.StudyHours {
		peak = max(peak, p.Value)
	}
	const labelW, valueW = 7, 6
	barW := max(width-labelW-valueW-2, 4)

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Study hours, last %d days", len(d.StudyHours))))
	b.WriteString("\n")
	for _, p := range d.StudyHours {
		frac := 0.0
		if peak > 0 {
			frac = p.Value / peak
		}
		fmt.Fprintf(&b, "%-*s %s %*.1f\n", labelW, p.Label, components.Bar(frac, barW), valueW-1, p.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderComparisons(rows []analytics.MetricComparison) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("This week vs last week"))
	b.WriteString("\n")
	for _, row := range rows {
		neutral := row.Trend.Direction == analytics.Neutral
		arrow := "–"
		switch row.Trend.Direction {
		case analytics.Up:
			arrow = "▲"
		case analytics.Down:
			arrow = "▼"
		}
		trend := lipgloss.NewStyle().Foreground(theme.Trend(row.Trend.Favorable, neutral)).
			Render(fmt.Sprintf("%s %.1f%%", arrow, row.Trend.PercentChange))
		fmt.Fprintf(&b, "%-16s %8s %8s  %s\n",
			row.Label, formatMetric(row.Current, row.Unit), formatMetric(row.Previous, row.Unit), trend)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMetric(v float64, unit string) string {
	switch unit {
	case "":
		return fmt.Sprintf("%.0f", v)
	case "%":
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func renderActivity(feed []analytics.Activity) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Recent activity"))
	b.WriteString("\n")
	for _, a := range feed {
		b.WriteString(theme.Body.Render(a.Title))
		b.WriteString(dim.Render("  " + a.Subtitle + " · " + a.At.Format("Jan 2")))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
