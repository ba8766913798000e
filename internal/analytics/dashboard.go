package analytics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

// Input is a read-only snapshot of the stored collections, each newest first.
type Input struct {
	Logs       []studylog.Entry
	Exams      []exam.Record
	Interviews []interview.Session
	SkillGaps  []skillgap.Report
}

// Options tunes the dashboard windows.
type Options struct {
	WeekStart   time.Weekday
	Days        int // length of the study-hours series
	ExamWindow  int // exams on the trend charts
	RecentLogs  int
	RecentItems int
}

// DefaultOptions mirrors the drift view: two weeks of days and exams.
func DefaultOptions() Options {
	return Options{
		WeekStart:   timewindow.DefaultWeekStart,
		Days:        14,
		ExamWindow:  14,
		RecentLogs:  7,
		RecentItems: 5,
	}
}

// Totals are lifetime figures.
type Totals struct {
	StudyHours        float64 `json:"studyHours"`
	Exams             int     `json:"exams"`
	AvgScore          int     `json:"avgScore"`
	Interviews        int     `json:"interviews"`
	AvgInterviewScore int     `json:"avgInterviewScore"`
	SkillGapReports   int     `json:"skillGapReports"`
}

// Activity is an entry of the recent-activity feed.
type Activity struct {
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	At       time.Time `json:"at"`
}

// Dashboard is the derived view model for presentation.
type Dashboard struct {
	GeneratedAt    time.Time             `json:"generatedAt"`
	StudyHours     []timewindow.DayPoint `json:"studyHours"`
	ScoreSeries    []ScorePoint          `json:"scoreSeries"`
	AIUsageSeries  []UsagePoint          `json:"aiUsageSeries"`
	ThisWeek       WeeklyMetrics         `json:"thisWeek"`
	LastWeek       WeeklyMetrics         `json:"lastWeek"`
	Comparisons    []MetricComparison    `json:"comparisons"`
	Streak         int                   `json:"streak"`
	Totals         Totals                `json:"totals"`
	RecentActivity []Activity            `json:"recentActivity"`
	RecentLogs     []studylog.Entry      `json:"recentLogs"`
}

// Build derives the dashboard from in. It depends only on its arguments, so
// the same snapshot and clock always give the same result.
func Build(in Input, clk clock.Clock, opts Options) Dashboard {
	now := clk.Now()
	today := timewindow.Day(now)

	thisWeek := Aggregate(timewindow.Week(now, opts.WeekStart), in.Logs, in.Exams)
	lastWeek := Aggregate(timewindow.PreviousWeek(now, opts.WeekStart), in.Logs, in.Exams)

	return Dashboard{
		GeneratedAt:    now,
		StudyHours:     StudyHoursSeries(in.Logs, today, opts.Days),
		ScoreSeries:    ScoreSeries(in.Exams, opts.ExamWindow),
		AIUsageSeries:  AIUsageSeries(in.Exams, opts.ExamWindow),
		ThisWeek:       thisWeek,
		LastWeek:       lastWeek,
		Comparisons:    CompareWeeks(thisWeek, lastWeek),
		Streak:         Streak(in.Logs, today),
		Totals:         totals(in),
		RecentActivity: recentActivity(in, opts.RecentItems),
		RecentLogs:     slices.Clone(in.Logs[:max(min(opts.RecentLogs, len(in.Logs)), 0)]),
	}
}

func totals(in Input) Totals {
	t := Totals{
		StudyHours:        studylog.TotalHours(in.Logs),
		Exams:             len(in.Exams),
		Interviews:        len(in.Interviews),
		AvgInterviewScore: interview.AverageScore(in.Interviews),
		SkillGapReports:   len(in.SkillGaps),
	}
	if len(in.Exams) > 0 {
		sum := 0
		for _, e := range in.Exams {
			sum += e.Score
		}
		t.AvgScore = roundHalfUp(float64(sum) / float64(len(in.Exams)))
	}
	return t
}

// recentActivity merges the newest exams, interviews and skill-gap reports
// into one feed, newest first.
func recentActivity(in Input, limit int) []Activity {
	var feed []Activity
	for _, e := range in.Exams[:min(3, len(in.Exams))] {
		feed = append(feed, Activity{
			Kind:     "exam",
			Title:    fmt.Sprintf("%s Mock Exam", e.ExamType),
			Subtitle: fmt.Sprintf("Score: %d%%", e.Score),
			At:       e.CreatedAt,
		})
	}
	for _, s := range in.Interviews[:min(3, len(in.Interviews))] {
		feed = append(feed, Activity{
			Kind:     "interview",
			Title:    "Mock Interview",
			Subtitle: fmt.Sprintf("Score: %d%%", s.OverallScore),
			At:       s.CreatedAt,
		})
	}
	for _, r := range in.SkillGaps[:min(2, len(in.SkillGaps))] {
		feed = append(feed, Activity{
			Kind:     "skillgap",
			Title:    fmt.Sprintf("%s Analysis", r.TargetRole),
			Subtitle: fmt.Sprintf("%d skills to learn", r.SkillsToLearn()),
			At:       r.CreatedAt,
		})
	}
	slices.SortStableFunc(feed, func(a, b Activity) int { return b.At.Compare(a.At) })
	if len(feed) > limit {
		feed = feed[:max(limit, 0)]
	}
	return feed
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
