package analytics

import (
	"fmt"
	"math"
)

// Direction is the sense of a period-over-period change.
type Direction int

const (
	Neutral Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "neutral"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	case "neutral", "":
		*d = Neutral
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Trend is the comparison of a metric between two periods.
type Trend struct {
	PercentChange float64   `json:"percentChange"`
	Direction     Direction `json:"direction"`
	// Favorable is true when the change goes the way the metric wants.
	Favorable bool `json:"favorable"`
}

// Compare computes the unsigned percentage change from previous to current,
// rounded to one decimal. A zero previous value yields a neutral trend with
// no change, whatever current is.
func Compare(current, previous float64, higherIsBetter bool) Trend {
	if previous == 0 {
		return Trend{Direction: Neutral}
	}
	t := Trend{PercentChange: round1(math.Abs(current-previous) / previous * 100)}
	switch {
	case current > previous:
		t.Direction = Up
	case current < previous:
		t.Direction = Down
	}
	if higherIsBetter {
		t.Favorable = t.Direction == Up
	} else {
		t.Favorable = t.Direction == Down
	}
	return t
}

// MetricComparison is one labelled row of the weekly comparison.
type MetricComparison struct {
	Label          string  `json:"label"`
	Unit           string  `json:"unit"`
	Current        float64 `json:"thisWeek"`
	Previous       float64 `json:"lastWeek"`
	HigherIsBetter bool    `json:"higherIsBetter"`
	Trend          Trend   `json:"trend"`
}

// CompareWeeks produces the four weekly comparisons. AI usage is the one
// metric where going down is good.
func CompareWeeks(this, last WeeklyMetrics) []MetricComparison {
	rows := []MetricComparison{
		{Label: "Study Hours", Unit: "hrs", Current: this.StudyHours, Previous: last.StudyHours, HigherIsBetter: true},
		{Label: "Avg Exam Score", Unit: "%", Current: this.AvgScore, Previous: last.AvgScore, HigherIsBetter: true},
		{Label: "Exams Taken", Current: float64(this.ExamCount), Previous: float64(last.ExamCount), HigherIsBetter: true},
		{Label: "AI Usage", Unit: "%", Current: this.AvgAIUsage, Previous: last.AvgAIUsage, HigherIsBetter: false},
	}
	for i := range rows {
		rows[i].Trend = Compare(rows[i].Current, rows[i].Previous, rows[i].HigherIsBetter)
	}
	return rows
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
