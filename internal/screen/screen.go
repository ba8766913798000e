package screen

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/questiongen"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeInterceptor is implemented by screens that handle Esc themselves
// instead of letting the app pop them.
type EscapeInterceptor interface {
	InterceptsEscape() bool
}

// Services are the collaborators screens read from and write to.
type Services struct {
	Logs       store.StudyLogRepo
	Exams      store.ExamRepo
	Interviews store.InterviewRepo
	SkillGaps  store.SkillGapRepo

	Generator     questiongen.Generator
	Estimator     exam.AIUsageEstimator
	QuestionCount int
	WeekStart     time.Weekday

	Clock clock.Clock
	Log   *zap.Logger
}

// Dashboard loads every collection and derives the dashboard.
func (s Services) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	in, err := store.LoadInput(ctx, s.Logs, s.Exams, s.Interviews, s.SkillGaps)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	opts := analytics.DefaultOptions()
	opts.WeekStart = s.WeekStart
	return analytics.Build(in, s.Clock, opts), nil
}

// StreakChangedMsg tells the app frame to refresh the header streak.
type StreakChangedMsg struct {
	Streak int
}
