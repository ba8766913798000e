package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// Validator inspects a generated batch. It may return a cleaned copy, for
// example with duplicates dropped or topics normalized.
type Validator interface {
	Name() string
	Validate(qs []exam.QuestionSpec, info exam.Info) ([]exam.QuestionSpec, *ValidationError)
}

// ValidationError explains why a batch was rejected.
type ValidationError struct {
	Validator string
	Index     int // 0-based question index, -1 for the whole batch
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
	}
	return fmt.Sprintf("validator %q: question %d: %s", e.Validator, e.Index+1, e.Message)
}

const (
	maxQuestionLen = 600
	maxOptions     = 6
)

// StructuralValidator rejects questions that cannot be asked or graded.
type StructuralValidator struct{}

func (StructuralValidator) Name() string { return "structural" }

func (v StructuralValidator) Validate(qs []exam.QuestionSpec, _ exam.Info) ([]exam.QuestionSpec, *ValidationError) {
	if len(qs) == 0 {
		return nil, &ValidationError{Validator: v.Name(), Index: -1, Message: "batch is empty", Retryable: true}
	}
	out := make([]exam.QuestionSpec, len(qs))
	for i, q := range qs {
		q.Question = strings.TrimSpace(q.Question)
		q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
		q.Options = trimAll(q.Options)

		fail := func(msg string) *ValidationError {
			return &ValidationError{Validator: v.Name(), Index: i, Message: msg, Retryable: true}
		}
		if err := q.Validate(); err != nil {
			return nil, fail(err.Error())
		}
		if len(q.Question) > maxQuestionLen {
			return nil, fail(fmt.Sprintf("question text exceeds %d characters", maxQuestionLen))
		}
		if len(q.Options) > maxOptions {
			return nil, fail(fmt.Sprintf("%d options, at most %d allowed", len(q.Options), maxOptions))
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o == "" {
				return nil, fail("empty option")
			}
			if seen[o] {
				return nil, fail(fmt.Sprintf("option %q repeated", o))
			}
			seen[o] = true
		}
		out[i] = q
	}
	return out, nil
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// TopicValidator rewrites topics to the catalog's spelling when they match
// case-insensitively. Topics outside the syllabus are kept as written.
type TopicValidator struct{}

func (TopicValidator) Name() string { return "topic" }

func (TopicValidator) Validate(qs []exam.QuestionSpec, info exam.Info) ([]exam.QuestionSpec, *ValidationError) {
	canonical := make(map[string]string, len(info.Topics))
	for _, t := range info.Topics {
		canonical[strings.ToLower(t)] = t
	}
	out := make([]exam.QuestionSpec, len(qs))
	for i, q := range qs {
		q.Topic = strings.TrimSpace(q.Topic)
		if c, ok := canonical[strings.ToLower(q.Topic)]; ok {
			q.Topic = c
		}
		out[i] = q
	}
	return out, nil
}

// DedupValidator drops repeated questions, comparing case- and
// whitespace-insensitively. The first occurrence wins.
type DedupValidator struct{}

func (DedupValidator) Name() string { return "dedup" }

func (DedupValidator) Validate(qs []exam.QuestionSpec, _ exam.Info) ([]exam.QuestionSpec, *ValidationError) {
	seen := make(map[string]bool, len(qs))
	out := make([]exam.QuestionSpec, 0, len(qs))
	for _, q := range qs {
		key := normalizeText(q.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out, nil
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DefaultValidators is the chain used by LLMGenerator unless overridden.
func DefaultValidators() []Validator {
	return []Validator{StructuralValidator{}, TopicValidator{}, DedupValidator{}}
}

func runValidators(chain []Validator, qs []exam.QuestionSpec, info exam.Info) ([]exam.QuestionSpec, error) {
	for _, v := range chain {
		var verr *ValidationError
		if qs, verr = v.Validate(qs, info); verr != nil {
			return nil, verr
		}
	}
	return qs, nil
}
