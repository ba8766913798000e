package analytics

import (
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

// WeeklyMetrics summarizes one window of activity.
type WeeklyMetrics struct {
	StudyHours float64 `json:"studyHours"`
	ExamCount  int     `json:"examCount"`
	AvgScore   float64 `json:"avgScore"`
	AvgAIUsage float64 `json:"avgAiUsage"`
}

// Aggregate reduces the logs and exams falling inside iv (bounds included).
// Averages are zero when the window holds no exams.
func Aggregate(iv timewindow.Interval, logs []studylog.Entry, exams []exam.Record) WeeklyMetrics {
	var m WeeklyMetrics
	for _, l := range logs {
		if iv.ContainsDate(l.Date) {
			m.StudyHours += l.Hours
		}
	}

	var scoreSum, usageSum int
	for _, e := range exams {
		if !iv.Contains(e.CreatedAt) {
			continue
		}
		m.ExamCount++
		scoreSum += e.Score
		usageSum += e.AIUsage
	}
	if m.ExamCount > 0 {
		m.AvgScore = float64(scoreSum) / float64(m.ExamCount)
		m.AvgAIUsage = float64(usageSum) / float64(m.ExamCount)
	}
	return m
}
