package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/app"
	"github.com/abhisek/examprep/internal/screen"
)

// runApp builds the services and launches the TUI.
func runApp(cmd *cobra.Command, startInPicker bool) error {
	e, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	svc := screen.Services{
		Logs:          e.store.StudyLogRepo(),
		Exams:         e.store.ExamRepo(),
		Interviews:    e.store.InterviewRepo(),
		SkillGaps:     e.store.SkillGapRepo(),
		Generator:     e.generator,
		Estimator:     e.estimator,
		QuestionCount: rt.cfg.Exam.Questions,
		WeekStart:     e.weekStart,
		Clock:         e.clock,
		Log:           rt.log.Named("tui"),
	}
	return app.Run(cmd.Context(), app.Options{Services: svc, StartInPicker: startInPicker})
}
