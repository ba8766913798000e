// Package interview models mock interview sessions and the AI feedback
// attached to them after they finish.
package interview

import (
	"errors"
	"math"
	"time"
)

// Session is a completed mock interview. Its score is computed by the
// interview itself; feedback is added once, afterwards.
type Session struct {
	ID              string    `json:"id" yaml:"id"`
	SessionType     string    `json:"sessionType" yaml:"sessionType" validate:"required,max=64"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
	DurationSeconds int       `json:"duration" yaml:"duration" validate:"gte=0"`
	OverallScore    int       `json:"overallScore" yaml:"overallScore" validate:"gte=0,lte=100"`
	Notes           string    `json:"notes,omitempty" yaml:"notes,omitempty" validate:"max=4000"`
	Feedback        *Feedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Feedback is the evaluation returned by a feedback provider.
type Feedback struct {
	Strengths       []string `json:"strengths" yaml:"strengths"`
	Weaknesses      []string `json:"weaknesses" yaml:"weaknesses"`
	ImprovementTips []string `json:"improvement_tips" yaml:"improvement_tips"`
}

// ErrFeedbackExists is returned when feedback is recorded twice.
var ErrFeedbackExists = errors.New("interview already has feedback")

// AverageScore is the rounded mean overall score, zero for no sessions.
func AverageScore(sessions []Session) int {
	if len(sessions) == 0 {
		return 0
	}
	sum := 0
	for _, s := range sessions {
		sum += s.OverallScore
	}
	return int(math.Floor(float64(sum)/float64(len(sessions)) + 0.5))
}

// Band is a coarse rating used to color interview scores.
type Band string

const (
	BandStrong  Band = "strong"
	BandAverage Band = "average"
	BandWeak    Band = "weak"
)

// ScoreBand rates an interview: 70 and up is strong, 50 and up average.
func ScoreBand(score int) Band {
	switch {
	case score >= 70:
		return BandStrong
	case score >= 50:
		return BandAverage
	}
	return BandWeak
}

// FormatDuration renders seconds as e.g. "12m30s".
func FormatDuration(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}
