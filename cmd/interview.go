package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/store"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Record mock interviews and get AI feedback",
}

var interviewAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a finished mock interview",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		duration, _ := cmd.Flags().GetInt("duration")
		score, _ := cmd.Flags().GetInt("score")
		notes, _ := cmd.Flags().GetString("notes")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		sess, err := s.InterviewRepo().Save(cmd.Context(), interview.Session{
			SessionType:     kind,
			DurationSeconds: duration,
			OverallScore:    score,
			Notes:           notes,
		})
		if err != nil {
			return err
		}
		rt.log.Info("interview saved", zap.String("interview_id", sess.ID), zap.Int("score", sess.OverallScore))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved interview %s (%s, %d%%)\n", sess.ID, sess.SessionType, sess.OverallScore)
		fmt.Fprintf(cmd.OutOrStdout(), "Run `examprep interview feedback %s` for AI feedback.\n", sess.ID)
		return nil
	},
}

var interviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mock interviews, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.InterviewRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list interviews: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No interviews recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-16s  %-12s  %9s  %5s  %s\n",
			"ID", "Date", "Type", "Duration", "Score", "Feedback")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, sess := range sessions {
			fb := "-"
			if sess.Feedback != nil {
				fb = "✓"
			}
			fmt.Fprintf(out, "%-36s  %-16s  %-12s  %9s  %4d%%  %s\n",
				sess.ID,
				sess.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(sess.SessionType, 12),
				interview.FormatDuration(sess.DurationSeconds),
				sess.OverallScore,
				fb,
			)
		}
		fmt.Fprintln(out, strings.Repeat("─", 96))
		fmt.Fprintf(out, "Average score: %d%%\n", interview.AverageScore(sessions))
		return nil
	},
}

var interviewFeedbackCmd = &cobra.Command{
	Use:   "feedback <id>",
	Short: "Generate AI feedback for an interview, or show it if it exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		repo := e.store.InterviewRepo()
		sess, err := repo.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no interview with id %s", args[0])
		}
		if err != nil {
			return err
		}
		if sess.Feedback != nil {
			printFeedback(cmd.OutOrStdout(), *sess.Feedback)
			return nil
		}
		if err := e.requireModel("interview feedback"); err != nil {
			return err
		}

		svc := interview.NewService(interview.NewEvaluator(e.provider), repo, 1, rt.log.Named("feedback"))
		defer svc.Close()

		fmt.Fprintln(cmd.ErrOrStderr(), "Asking for feedback...")
		fb, err := svc.Evaluate(cmd.Context(), sess)
		if err != nil {
			return err
		}
		printFeedback(cmd.OutOrStdout(), fb)
		return nil
	},
}

func printFeedback(w io.Writer, fb interview.Feedback) {
	section := func(title string, items []string) {
		fmt.Fprintln(w, title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, it := range items {
			fmt.Fprintf(w, "  • %s\n", it)
		}
		fmt.Fprintln(w)
	}
	section("Strengths", fb.Strengths)
	section("Weaknesses", fb.Weaknesses)
	section("Improvement tips", fb.ImprovementTips)
}

func init() {
	interviewAddCmd.Flags().String("type", "technical", "Interview type, e.g. technical, behavioral, system-design")
	interviewAddCmd.Flags().Int("duration", 0, "Duration in seconds")
	interviewAddCmd.Flags().Int("score", 0, "Overall score, 0 to 100")
	interviewAddCmd.Flags().String("notes", "", "What was asked and how it went")
	interviewAddCmd.MarkFlagRequired("score")

	interviewListCmd.Flags().IntP("limit", "n", 20, "Number of interviews to show")

	interviewCmd.AddCommand(interviewAddCmd)
	interviewCmd.AddCommand(interviewListCmd)
	interviewCmd.AddCommand(interviewFeedbackCmd)
}
