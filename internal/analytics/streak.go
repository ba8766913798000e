// Package analytics turns study logs, exam records and interviews into the
// numbers shown on the dashboard: streaks, weekly metrics, trends and
// rolling series. Every function here is pure given its inputs and clock.
package analytics

import (
	"slices"

	"cloud.google.com/go/civil"

	"github.com/abhisek/examprep/internal/studylog"
)

// Streak counts consecutive study days walking back from today. Each entry
// may be at most one day older than the previously counted one (or today,
// for the first). Entries on the same day both count, so callers pass logs
// with one entry per day. The input slice is not modified.
func Streak(logs []studylog.Entry, today civil.Date) int {
	if len(logs) == 0 {
		return 0
	}
	dates := make([]civil.Date, len(logs))
	for i, l := range logs {
		dates[i] = l.Date
	}
	slices.SortFunc(dates, func(a, b civil.Date) int { return b.Compare(a) })

	streak := 0
	cursor := today
	for _, d := range dates {
		if cursor.DaysSince(d) > 1 {
			break
		}
		streak++
		cursor = d
	}
	return streak
}
