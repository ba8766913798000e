// Package questiongen supplies exam questions, either from an LLM with a
// validation chain or from a built-in offline bank.
package questiongen

import (
	"context"

	"github.com/abhisek/examprep/internal/exam"
)

// Generator produces the question set for one exam.
type Generator interface {
	// Generate returns up to count validated questions for t. Failures are
	// reported as *exam.GenerationError.
	Generate(ctx context.Context, t exam.Type, count int) ([]exam.QuestionSpec, error)
}

func genErr(t exam.Type, err error) error {
	return &exam.GenerationError{Type: t, Err: err}
}
