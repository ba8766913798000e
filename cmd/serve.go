package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/server"
	"github.com/abhisek/examprep/internal/skillgap"
)

// feedbackQueue is how many async interview feedback requests may wait.
const feedbackQueue = 16

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		interviews := e.store.InterviewRepo()
		feedback := interview.NewService(interview.NewEvaluator(e.provider), interviews, feedbackQueue, rt.log.Named("feedback"))
		defer feedback.Close()

		opts := server.DefaultOptions()
		opts.QuestionCount = rt.cfg.Exam.Questions
		opts.WeekStart = e.weekStart
		opts.RateLimit = rt.cfg.Server.RateLimit
		opts.Burst = rt.cfg.Server.Burst

		srv := server.New(server.Deps{
			Logs:       e.store.StudyLogRepo(),
			Exams:      e.store.ExamRepo(),
			Interviews: interviews,
			SkillGaps:  e.store.SkillGapRepo(),
			Generator:  e.generator,
			Feedback:   feedback,
			Analyzer:   skillgap.NewAnalyzer(e.provider),
			Estimator:  e.estimator,
			Clock:      e.clock,
			Log:        rt.log.Named("http"),
		}, opts)

		if e.offline {
			rt.log.Warn("no LLM backend configured; /ai endpoints and interview feedback will fail with 502")
		}
		rt.log.Info("starting api", zap.String("addr", rt.cfg.Server.Addr))
		return srv.Run(ctx, rt.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
