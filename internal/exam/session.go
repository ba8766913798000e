package exam

import (
	"math"
	"slices"
	"time"

	"github.com/abhisek/examprep/internal/clock"
)

// State is the lifecycle state of an exam session.
type State int

const (
	InProgress State = iota // questions can be answered and navigated
	Submitted               // terminal, the result has been produced
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	}
	return "unknown"
}

// Session is the state of one exam attempt. It is owned by the flow that
// created it and is not safe for concurrent use.
type Session struct {
	examType  Type
	questions []QuestionSpec
	clock     clock.Clock

	// current is the index of the question on screen.
	current int

	// answers maps question index to the chosen option.
	answers map[int]string

	// elapsed accumulates whole seconds spent on each question, counted
	// each time an answer is recorded.
	elapsed map[int]int

	startedAt time.Time
	lastFocus time.Time
	state     State
	result    *Result
}

// NewSession validates the question set and starts a session at question 0.
// A malformed question fails here, before anything is shown.
func NewSession(t Type, questions []QuestionSpec, clk clock.Clock) (*Session, error) {
	if err := ValidateAll(questions); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	qs := make([]QuestionSpec, len(questions))
	for i, q := range questions {
		q.Options = slices.Clone(q.Options)
		qs[i] = q
	}
	now := clk.Now()
	return &Session{
		examType:  t,
		questions: qs,
		clock:     clk,
		answers:   make(map[int]string, len(qs)),
		elapsed:   make(map[int]int, len(qs)),
		startedAt: now,
		lastFocus: now,
		state:     InProgress,
	}, nil
}

func (s *Session) Type() Type { return s.examType }
func (s *Session) State() State { return s.state }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Len() int { return len(s.questions) }
func (s *Session) CurrentIndex() int { return s.current }
func (s *Session) Current() QuestionSpec { return s.questions[s.current] }
func (s *Session) Question(i int) QuestionSpec { return s.questions[i] }

// AnswerFor returns the recorded answer for question i, if any.
func (s *Session) AnswerFor(i int) (string, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Answered reports whether question i has an answer.
func (s *Session) Answered(i int) bool {
	_, ok := s.answers[i]
	return ok
}

// AnsweredCount returns how many questions have an answer.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// Unanswered returns the indices without an answer, ascending.
func (s *Session) Unanswered() []int {
	var missing []int
	for i := range s.questions {
		if !s.Answered(i) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Elapsed is the wall time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.startedAt)
}

// Answer records choice for the current question, overwriting any earlier
// answer, and charges the time since the question got focus to it.
func (s *Session) Answer(choice string) error {
	if s.state != InProgress {
		return ErrInvalidState
	}
	if !slices.Contains(s.questions[s.current].Options, choice) {
		return ErrUnknownOption
	}
	now := s.clock.Now()
	s.elapsed[s.current] += wholeSeconds(now.Sub(s.lastFocus))
	s.lastFocus = now
	s.answers[s.current] = choice
	return nil
}

// Next moves to the following question. At the last question it does nothing.
func (s *Session) Next() error {
	return s.JumpTo(s.current + 1)
}

// Previous moves to the preceding question. At the first question it does nothing.
func (s *Session) Previous() error {
	return s.JumpTo(s.current - 1)
}

// JumpTo moves to question i, clamped into range. Moving resets the focus
// timer for the newly current question.
func (s *Session) JumpTo(i int) error {
	if s.state != InProgress {
		return ErrInvalidState
	}
	i = max(0, min(i, len(s.questions)-1))
	if i == s.current {
		return nil
	}
	s.current = i
	s.lastFocus = s.clock.Now()
	return nil
}

// Submit grades the session and moves it to Submitted. It fails with an
// *IncompleteSessionError while any question is unanswered, leaving the
// session untouched. The returned result is never modified by the session.
func (s *Session) Submit(est AIUsageEstimator) (Result, error) {
	if s.state != InProgress {
		return Result{}, ErrInvalidState
	}
	if missing := s.Unanswered(); len(missing) > 0 {
		return Result{}, &IncompleteSessionError{Unanswered: missing}
	}

	now := s.clock.Now()
	graded := make([]GradedQuestion, len(s.questions))
	correct := 0
	for i, q := range s.questions {
		graded[i] = grade(q, s.answers[i], s.elapsed[i])
		if graded[i].IsCorrect {
			correct++
		}
	}
	score := Score(correct, len(graded))

	aiUsage := 0
	if est != nil {
		aiUsage = max(0, min(100, est.EstimateAIUsage(graded)))
	}

	r := Result{
		ExamType:         s.examType,
		Score:            score,
		Accuracy:         score,
		AIUsage:          aiUsage,
		TotalQuestions:   len(graded),
		CorrectAnswers:   correct,
		TimeSpentSeconds: wholeSeconds(now.Sub(s.startedAt)),
		WeakTopics:       WeakTopics(graded),
		Questions:        graded,
		CreatedAt:        now,
	}
	s.state = Submitted
	s.result = &r
	return r.Clone(), nil
}

// Result returns a copy of the submitted result.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return s.result.Clone(), true
}

// Score is round(correct/total*100), or 0 for an empty exam.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
