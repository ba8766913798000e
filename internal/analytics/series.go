package analytics

import (
	"cloud.google.com/go/civil"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

// ScorePoint is one exam on the score chart.
type ScorePoint struct {
	Date     civil.Date `json:"date"`
	Label    string     `json:"label"`
	Score    int        `json:"score"`
	Accuracy int        `json:"accuracy"`
}

// UsagePoint is one exam on the AI-usage chart.
type UsagePoint struct {
	Date    civil.Date `json:"date"`
	Label   string     `json:"label"`
	AIUsage int        `json:"aiUsage"`
}

// StudyHoursSeries returns the last n days ending today with the hours
// logged on each day, zero where nothing was logged.
func StudyHoursSeries(logs []studylog.Entry, today civil.Date, n int) []timewindow.DayPoint {
	points := timewindow.LastNDays(today, n)
	if len(points) == 0 {
		return points
	}
	first := points[0].Date
	for _, l := range logs {
		i := l.Date.DaysSince(first)
		if i >= 0 && i < len(points) {
			points[i].Value += l.Hours
		}
	}
	return points
}

// recentChronological takes up to n of the newest exams (storage order is
// newest first) and returns them oldest first.
func recentChronological(exams []exam.Record, n int) []exam.Record {
	n = max(min(n, len(exams)), 0)
	out := make([]exam.Record, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = exams[i]
	}
	return out
}

// ScoreSeries charts score and accuracy of the n most recent exams,
// oldest to newest.
func ScoreSeries(exams []exam.Record, n int) []ScorePoint {
	recent := recentChronological(exams, n)
	points := make([]ScorePoint, len(recent))
	for i, e := range recent {
		d := timewindow.Day(e.CreatedAt)
		points[i] = ScorePoint{Date: d, Label: timewindow.Label(d), Score: e.Score, Accuracy: e.Accuracy}
	}
	return points
}

// AIUsageSeries charts AI usage of the n most recent exams, oldest to newest.
func AIUsageSeries(exams []exam.Record, n int) []UsagePoint {
	recent := recentChronological(exams, n)
	points := make([]UsagePoint, len(recent))
	for i, e := range recent {
		d := timewindow.Day(e.CreatedAt)
		points[i] = UsagePoint{Date: d, Label: timewindow.Label(d), AIUsage: e.AIUsage}
	}
	return points
}
