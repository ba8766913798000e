package timewindow

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/clock"
)

func TestDayNormalizesTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2025, 6, 10, 23, 59, 59, 0, loc)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 10}, Day(late))
	assert.Equal(t, "2025-06-10", Day(late).String())

	c := clock.Fixed(time.Date(2025, 6, 10, 0, 0, 1, 0, loc))
	assert.Equal(t, Day(late), Today(c))
}

func TestWeekSundayStart(t *testing.T) {
	// Wednesday 2025-06-11.
	anchor := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)
	w := Week(anchor, DefaultWeekStart)

	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Sunday, w.Start.Weekday())
	assert.Equal(t, time.Saturday, w.End.Weekday())
	assert.Equal(t, time.Date(2025, 6, 14, 23, 59, 59, 999999999, time.UTC), w.End)
}

func TestWeekAnchorOnFirstDay(t *testing.T) {
	sunday := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	w := Week(sunday, time.Sunday)
	assert.Equal(t, sunday, w.Start)

	monday := Week(sunday, time.Monday)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), monday.Start)
}

func TestPreviousWeek(t *testing.T) {
	anchor := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	prev := PreviousWeek(anchor, time.Sunday)
	cur := Week(anchor, time.Sunday)
	assert.Equal(t, cur.Start.AddDate(0, 0, -7), prev.Start)
	assert.True(t, prev.End.Before(cur.Start))
}

func TestIntervalContainsIsClosed(t *testing.T) {
	w := Week(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), time.Sunday)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start bound", w.Start, true},
		{"end bound", w.End, true},
		{"middle", w.Start.Add(72 * time.Hour), true},
		{"before start", w.Start.Add(-time.Nanosecond), false},
		{"after end", w.End.Add(time.Nanosecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.at))
		})
	}

	assert.True(t, w.ContainsDate(civil.Date{Year: 2025, Month: 6, Day: 14}))
	assert.False(t, w.ContainsDate(civil.Date{Year: 2025, Month: 6, Day: 15}))
}

func TestLastNDays(t *testing.T) {
	today := civil.Date{Year: 2025, Month: 3, Day: 5}
	pts := LastNDays(today, 14)

	require.Len(t, pts, 14)
	assert.Equal(t, civil.Date{Year: 2025, Month: 2, Day: 20}, pts[0].Date)
	assert.Equal(t, today, pts[13].Date)
	for i := 1; i < len(pts); i++ {
		assert.Equal(t, 1, pts[i].Date.DaysSince(pts[i-1].Date))
		assert.Zero(t, pts[i].Value)
	}
	assert.Equal(t, "Mar 5", pts[13].Label)
}

func TestLastNDaysEmpty(t *testing.T) {
	assert.Empty(t, LastNDays(civil.Date{Year: 2025, Month: 1, Day: 1}, 0))
}
