package exam

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned by any session operation after Submit.
	// The session cannot be resumed; start a new one.
	ErrInvalidState = errors.New("exam session already submitted")

	// ErrIncompleteSession matches *IncompleteSessionError via errors.Is.
	ErrIncompleteSession = errors.New("not all questions answered")

	// ErrUnknownOption is returned when an answer is not one of the options.
	ErrUnknownOption = errors.New("answer is not one of the options")

	// ErrNoQuestions is returned when a session is created from an empty set.
	ErrNoQuestions = errors.New("exam has no questions")
)

// IncompleteSessionError lists the question indices still missing an answer.
type IncompleteSessionError struct {
	Unanswered []int
}

func (e *IncompleteSessionError) Error() string {
	nums := make([]string, len(e.Unanswered))
	for i, idx := range e.Unanswered {
		nums[i] = fmt.Sprintf("%d", idx+1)
	}
	return fmt.Sprintf("%s: question(s) %s", ErrIncompleteSession, strings.Join(nums, ", "))
}

func (e *IncompleteSessionError) Is(target error) bool {
	return target == ErrIncompleteSession
}

// GenerationError wraps a failure of the question provider. The exam is
// treated as never started.
type GenerationError struct {
	Type Type
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("exam could not be generated for %s: %v", e.Type, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure of the result store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
