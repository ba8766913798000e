package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

func record(at time.Time, score, usage int) exam.Record {
	return exam.Record{Result: exam.Result{ExamType: exam.TypeDSA, CreatedAt: at, Score: score, Accuracy: score, AIUsage: usage}}
}

func TestAggregate(t *testing.T) {
	// Week of Sunday 2025-06-08 .. Saturday 2025-06-14.
	week := timewindow.Week(time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC), time.Sunday)

	logs := []studylog.Entry{
		{Date: today, Hours: 2},
		{Date: today.AddDays(-3), Hours: 1.5}, // Sunday, first day
		{Date: today.AddDays(-4), Hours: 9},   // previous Saturday
	}
	exams := []exam.Record{
		record(week.End, 80, 10),
		record(week.Start, 60, 20),
		record(week.Start.Add(-time.Second), 10, 30),
	}

	m := Aggregate(week, logs, exams)
	assert.Equal(t, 3.5, m.StudyHours)
	assert.Equal(t, 2, m.ExamCount)
	assert.Equal(t, 70.0, m.AvgScore)
	assert.Equal(t, 15.0, m.AvgAIUsage)
}

func TestAggregateNoExams(t *testing.T) {
	week := timewindow.Week(time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC), time.Sunday)
	m := Aggregate(week, []studylog.Entry{{Date: today, Hours: 1}}, nil)
	assert.Equal(t, WeeklyMetrics{StudyHours: 1}, m)
}
