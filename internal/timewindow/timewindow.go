// Package timewindow holds the calendar arithmetic behind the analytics:
// day normalization, week bounds, closed intervals and rolling day ranges.
//
// Calendar days are civil.Date values. They carry no time zone, serialize as
// YYYY-MM-DD and are turned back into instants only at the edge, using the
// location of the timestamp they are compared against.
package timewindow

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/abhisek/examprep/internal/clock"
)

// DefaultWeekStart is the first day of a weekly window.
const DefaultWeekStart = time.Sunday

// Day normalizes t to its calendar day in t's own location.
func Day(t time.Time) civil.Date {
	return civil.DateOf(t)
}

// Today returns the current calendar day according to c.
func Today(c clock.Clock) civil.Date {
	return Day(c.Now())
}

// Interval is a closed time range: both Start and End are inside it.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the interval, bounds included.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// ContainsDate reports whether the midnight of d, in the interval's
// location, lies within the interval.
func (iv Interval) ContainsDate(d civil.Date) bool {
	return iv.Contains(d.In(iv.Start.Location()))
}

// Week returns the week containing anchor: from midnight of the most recent
// `first` weekday to the last nanosecond before the following one.
func Week(anchor time.Time, first time.Weekday) Interval {
	loc := anchor.Location()
	day := Day(anchor)
	offset := (int(anchor.Weekday()) - int(first) + 7) % 7
	start := day.AddDays(-offset)
	next := start.AddDays(7)
	return Interval{
		Start: start.In(loc),
		End:   next.In(loc).Add(-time.Nanosecond),
	}
}

// PreviousWeek returns the week that contains anchor minus seven days.
func PreviousWeek(anchor time.Time, first time.Weekday) Interval {
	return Week(anchor.AddDate(0, 0, -7), first)
}

// DayPoint is one slot of a rolling day series.
type DayPoint struct {
	Date  civil.Date `json:"date"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
}

// LastNDays returns n zero-valued points in ascending date order, the last
// of which is today. n <= 0 yields an empty series.
func LastNDays(today civil.Date, n int) []DayPoint {
	if n <= 0 {
		return []DayPoint{}
	}
	points := make([]DayPoint, n)
	for i := 0; i < n; i++ {
		d := today.AddDays(i - (n - 1))
		points[i] = DayPoint{Date: d, Label: Label(d)}
	}
	return points
}

// Label renders a short chart label such as "Jan 2".
func Label(d civil.Date) string {
	return d.In(time.UTC).Format("Jan 2")
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (civil.Date, error) {
	return civil.ParseDate(s)
}
