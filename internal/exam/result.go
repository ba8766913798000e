package exam

import (
	"fmt"
	"slices"
	"time"
)

// Result is the outcome of a submitted session, handed to the store.
type Result struct {
	ExamType         Type             `json:"examType" yaml:"examType"`
	Score            int              `json:"score" yaml:"score"`
	Accuracy         int              `json:"accuracy" yaml:"accuracy"`
	AIUsage          int              `json:"aiUsagePercentage" yaml:"aiUsagePercentage"`
	TotalQuestions   int              `json:"totalQuestions" yaml:"totalQuestions"`
	CorrectAnswers   int              `json:"correctAnswers" yaml:"correctAnswers"`
	TimeSpentSeconds int              `json:"timeSpent" yaml:"timeSpent"`
	WeakTopics       []string         `json:"weakTopics" yaml:"weakTopics"`
	Questions        []GradedQuestion `json:"questions" yaml:"questions"`
	CreatedAt        time.Time        `json:"createdAt" yaml:"createdAt"`
}

// Clone returns a deep copy so callers cannot alias the session's result.
func (r Result) Clone() Result {
	out := r
	out.WeakTopics = slices.Clone(r.WeakTopics)
	out.Questions = make([]GradedQuestion, len(r.Questions))
	for i, q := range r.Questions {
		q.Options = slices.Clone(q.Options)
		out.Questions[i] = q
	}
	return out
}

// Validate checks a result graded outside a Session. The score must follow
// from the counts, and graded questions, when present, must agree with them.
func (r Result) Validate() error {
	if r.TotalQuestions < 0 || r.CorrectAnswers < 0 {
		return fmt.Errorf("question counts must not be negative")
	}
	if r.CorrectAnswers > r.TotalQuestions {
		return fmt.Errorf("correctAnswers %d exceeds totalQuestions %d", r.CorrectAnswers, r.TotalQuestions)
	}
	if r.AIUsage < 0 || r.AIUsage > 100 {
		return fmt.Errorf("aiUsagePercentage %d out of range", r.AIUsage)
	}
	if want := Score(r.CorrectAnswers, r.TotalQuestions); r.Score != want {
		return fmt.Errorf("score %d does not match %d of %d correct (want %d)", r.Score, r.CorrectAnswers, r.TotalQuestions, want)
	}
	if len(r.Questions) == 0 {
		return nil
	}
	if len(r.Questions) != r.TotalQuestions {
		return fmt.Errorf("%d questions listed for totalQuestions %d", len(r.Questions), r.TotalQuestions)
	}
	correct := 0
	for i, q := range r.Questions {
		if q.IsCorrect != (q.UserAnswer == q.CorrectAnswer) {
			return fmt.Errorf("question %d: isCorrect disagrees with the answer", i)
		}
		if q.IsCorrect {
			correct++
		}
	}
	if correct != r.CorrectAnswers {
		return fmt.Errorf("%d questions graded correct but correctAnswers is %d", correct, r.CorrectAnswers)
	}
	return nil
}

// Record is a stored exam result.
type Record struct {
	ID     string `json:"id" yaml:"id"`
	Result `yaml:",inline"`
}

// WeakTopics returns the distinct topics of incorrectly answered questions
// in first-seen order. Questions without a topic are skipped.
func WeakTopics(graded []GradedQuestion) []string {
	seen := make(map[string]bool)
	topics := []string{}
	for _, q := range graded {
		if q.IsCorrect || q.Topic == "" || seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		topics = append(topics, q.Topic)
	}
	return topics
}

// Band is a coarse rating used to color scores.
type Band string

const (
	BandExcellent Band = "excellent"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

// ScoreBand rates an exam score: 80 and up is excellent, 60 and up is fair.
func ScoreBand(score int) Band {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandFair
	}
	return BandPoor
}
