package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/store"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Take mock exams and review results",
}

var examTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the available exam tracks",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range exam.Catalog() {
			fmt.Fprintf(out, "%-6s  %-30s  %3d min  %s\n",
				info.Type, info.Name, info.DurationMinutes, strings.Join(info.Topics, ", "))
		}
	},
}

var examListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted exams, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.ExamRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list exams: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No exams yet. Run `examprep exam take` to start one.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-16s  %-5s  %5s  %7s  %6s  %3s\n",
			"ID", "Taken", "Type", "Score", "Correct", "Time", "AI")
		fmt.Fprintln(out, strings.Repeat("─", 92))
		for _, r := range recs {
			fmt.Fprintf(out, "%-36s  %-16s  %-5s  %4d%%  %7s  %6s  %2d%%\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.ExamType,
				r.Score,
				fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions),
				exam.FormatElapsed(time.Duration(r.TimeSpentSeconds)*time.Second),
				r.AIUsage,
			)
		}
		return nil
	},
}

var examShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an exam result with every question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.ExamRepo().Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no exam with id %s", args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(out, "Exam:      %s\n", r.ExamType.Name())
		fmt.Fprintf(out, "Taken:     %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Score:     %d%% (%s)\n", r.Score, exam.ScoreBand(r.Score))
		fmt.Fprintf(out, "Correct:   %d of %d\n", r.CorrectAnswers, r.TotalQuestions)
		fmt.Fprintf(out, "Time:      %s\n", exam.FormatElapsed(time.Duration(r.TimeSpentSeconds)*time.Second))
		fmt.Fprintf(out, "AI usage:  %d%%\n", r.AIUsage)
		if len(r.WeakTopics) > 0 {
			fmt.Fprintf(out, "Weak:      %s\n", strings.Join(r.WeakTopics, ", "))
		}

		for i, q := range r.Questions {
			fmt.Fprintln(out)
			fmt.Fprintln(out, sep)
			mark := "✓"
			if !q.IsCorrect {
				mark = "✗"
			}
			fmt.Fprintf(out, "%s Q%d [%s] %s\n", mark, i+1, q.Topic, q.Question)
			fmt.Fprintf(out, "  Your answer: %s (%ds)\n", q.UserAnswer, q.TimeTakenSeconds)
			if !q.IsCorrect {
				fmt.Fprintf(out, "  Correct:     %s\n", q.CorrectAnswer)
			}
			if q.Explanation != "" {
				fmt.Fprintf(out, "  %s\n", q.Explanation)
			}
		}
		return nil
	},
}

var examTakeCmd = &cobra.Command{
	Use:         "take",
	Short:       "Open the exam picker in the TUI",
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}

func init() {
	examListCmd.Flags().IntP("limit", "n", 20, "Number of exams to show")

	examCmd.AddCommand(examTypesCmd)
	examCmd.AddCommand(examListCmd)
	examCmd.AddCommand(examShowCmd)
	examCmd.AddCommand(examTakeCmd)
}
