package exam

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// QuestionSpec is one multiple-choice question as supplied by the question
// provider.
type QuestionSpec struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Topic         string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Validate checks that the question can be asked and graded.
func (q QuestionSpec) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q has %d option(s), need at least 2", q.Question, len(q.Options))
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("question %q: correct answer %q is not among the options", q.Question, q.CorrectAnswer)
	}
	return nil
}

// ValidateAll validates a whole question set, reporting the first offender.
func ValidateAll(qs []QuestionSpec) error {
	if len(qs) == 0 {
		return ErrNoQuestions
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// GradedQuestion is a question after submission.
type GradedQuestion struct {
	QuestionSpec     `yaml:",inline"`
	UserAnswer       string `json:"userAnswer" yaml:"userAnswer"`
	IsCorrect        bool   `json:"isCorrect" yaml:"isCorrect"`
	TimeTakenSeconds int    `json:"timeTaken" yaml:"timeTaken"`
}

func grade(q QuestionSpec, answer string, seconds int) GradedQuestion {
	spec := q
	spec.Options = slices.Clone(q.Options)
	return GradedQuestion{
		QuestionSpec:     spec,
		UserAnswer:       answer,
		IsCorrect:        answer == q.CorrectAnswer,
		TimeTakenSeconds: seconds,
	}
}
