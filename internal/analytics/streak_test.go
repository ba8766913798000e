package analytics

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/abhisek/examprep/internal/studylog"
)

var today = civil.Date{Year: 2025, Month: 6, Day: 11}

func logsOn(offsets ...int) []studylog.Entry {
	logs := make([]studylog.Entry, len(offsets))
	for i, off := range offsets {
		logs[i] = studylog.Entry{Date: today.AddDays(-off), Hours: 1}
	}
	return logs
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"empty", nil, 0},
		{"today only", []int{0}, 1},
		{"three consecutive", []int{0, 1, 2}, 3},
		{"unsorted input", []int{2, 0, 1}, 3},
		{"gap of two", []int{0, 2}, 1},
		{"starts yesterday", []int{1, 2, 3}, 3},
		{"starts two days ago", []int{2, 3}, 0},
		{"broken later", []int{0, 1, 2, 5, 6}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(logsOn(tt.offsets...), today); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Same-day entries are each counted; collapsing duplicates is the
// caller's job.
func TestStreakCountsDuplicateDays(t *testing.T) {
	if got := Streak(logsOn(0, 0, 1), today); got != 3 {
		t.Errorf("Streak() = %d, want 3", got)
	}
}

func TestStreakDoesNotReorderInput(t *testing.T) {
	logs := logsOn(2, 0, 1)
	Streak(logs, today)
	if logs[0].Date != today.AddDays(-2) {
		t.Error("input slice was reordered")
	}
}

func TestStreakFutureEntryCounts(t *testing.T) {
	if got := Streak(logsOn(-1, 0), today); got != 2 {
		t.Errorf("Streak() = %d, want 2", got)
	}
}
