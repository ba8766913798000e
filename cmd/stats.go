package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the progress dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		weekStart, err := rt.cfg.WeekStart()
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		in, err := store.LoadInput(cmd.Context(), s.StudyLogRepo(), s.ExamRepo(), s.InterviewRepo(), s.SkillGapRepo())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		opts := analytics.DefaultOptions()
		opts.WeekStart = weekStart
		d := analytics.Build(in, clock.Real{}, opts)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		writeStats(cmd.OutOrStdout(), d)
		return nil
	},
}

// writeStats prints the dashboard as plain text tables.
func writeStats(w io.Writer, d analytics.Dashboard) {
	rule := strings.Repeat("─", 60)

	fmt.Fprintln(w, "Overview")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-24s %d days\n", "Study streak", d.Streak)
	fmt.Fprintf(w, "%-24s %.1f hrs\n", "Total study", d.Totals.StudyHours)
	fmt.Fprintf(w, "%-24s %d (avg %d%%)\n", "Exams", d.Totals.Exams, d.Totals.AvgScore)
	fmt.Fprintf(w, "%-24s %d (avg %d%%)\n", "Interviews", d.Totals.Interviews, d.Totals.AvgInterviewScore)
	fmt.Fprintf(w, "%-24s %d\n", "Skill-gap reports", d.Totals.SkillGapReports)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "This Week vs Last Week")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %10s  %10s  %s\n", "Metric", "This week", "Last week", "Change")
	for _, row := range d.Comparisons {
		fmt.Fprintf(w, "%-16s  %10s  %10s  %s\n",
			row.Label, formatValue(row.Current, row.Unit), formatValue(row.Previous, row.Unit), formatTrend(row.Trend))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Study Hours, last %d days\n", len(d.StudyHours))
	fmt.Fprintln(w, rule)
	peak := 0.0
	for _, p := range d.StudyHours {
		peak = max(peak, p.Value)
	}
	for _, p := range d.StudyHours {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", int(p.Value/peak*40+0.5))
		}
		fmt.Fprintf(w, "%-7s %5.1f  %s\n", p.Label, p.Value, bar)
	}

	if len(d.ScoreSeries) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Exams")
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%-7s  %6s  %9s\n", "Date", "Score", "AI usage")
		for i, p := range d.ScoreSeries {
			fmt.Fprintf(w, "%-7s  %5d%%  %8d%%\n", p.Label, p.Score, d.AIUsageSeries[i].AIUsage)
		}
	}

	if len(d.RecentActivity) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Activity")
		fmt.Fprintln(w, rule)
		for _, a := range d.RecentActivity {
			fmt.Fprintf(w, "%-6s  %-30s  %s\n", a.At.Local().Format("Jan 2"), truncate(a.Title, 30), a.Subtitle)
		}
	}
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "":
		return fmt.Sprintf("%.0f", v)
	case "%":
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func formatTrend(t analytics.Trend) string {
	switch t.Direction {
	case analytics.Up:
		return fmt.Sprintf("▲ %.1f%%", t.PercentChange)
	case analytics.Down:
		return fmt.Sprintf("▼ %.1f%%", t.PercentChange)
	}
	return "–"
}

// truncate cuts s to at most n bytes for fixed-width columns.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the dashboard as JSON")
}
