package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
)

var skillgapCmd = &cobra.Command{
	Use:   "skillgap",
	Short: "Analyze the gap between your skills and a target role",
}

var skillgapAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate and save a skill-gap report",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		skills, _ := cmd.Flags().GetString("skills")
		weeks, _ := cmd.Flags().GetInt("weeks")

		req := skillgap.Request{
			TargetRole:       role,
			CurrentSkills:    studylog.ParseTopics(skills),
			PreparationWeeks: weeks,
		}
		if err := req.Validate(); err != nil {
			return err
		}

		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireModel("skill-gap analysis"); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing...")
		analysis, err := skillgap.NewAnalyzer(e.provider).Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}
		rep, err := e.store.SkillGapRepo().Save(cmd.Context(), skillgap.Report{Request: req, Analysis: analysis})
		if err != nil {
			return err
		}
		rt.log.Info("skill gap saved", zap.String("report_id", rep.ID), zap.Int("missing", rep.SkillsToLearn()))
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

var skillgapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved skill-gap reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		reports, err := s.SkillGapRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list skill gaps: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintln(out, "No skill-gap reports yet.")
			return nil
		}
		for i, rep := range reports {
			if verbose {
				if i > 0 {
					fmt.Fprintln(out, strings.Repeat("═", 60))
				}
				printReport(out, rep)
				continue
			}
			fmt.Fprintf(out, "%s  %-30s  %2d weeks  %d skills to learn\n",
				rep.CreatedAt.Local().Format("2006-01-02"), truncate(rep.TargetRole, 30),
				rep.PreparationWeeks, rep.SkillsToLearn())
		}
		return nil
	},
}

func printReport(w io.Writer, rep skillgap.Report) {
	fmt.Fprintf(w, "%s in %d weeks\n\n", rep.TargetRole, rep.PreparationWeeks)
	fmt.Fprintln(w, "Missing skills")
	for _, s := range rep.MissingSkills {
		fmt.Fprintf(w, "  • %s\n", s)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Roadmap")
	for _, step := range rep.Roadmap {
		fmt.Fprintf(w, "  %s: %s\n", step.Phase, step.Focus)
		for _, t := range step.Tasks {
			fmt.Fprintf(w, "    - %s\n", t)
		}
	}
	if len(rep.Strategies) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Strategies")
		for _, s := range rep.Strategies {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
}

func init() {
	skillgapAnalyzeCmd.Flags().String("role", "", "Target role, e.g. \"Backend Engineer\"")
	skillgapAnalyzeCmd.Flags().String("skills", "", "Comma-separated skills you already have")
	skillgapAnalyzeCmd.Flags().Int("weeks", 8, "Weeks available to prepare")
	skillgapAnalyzeCmd.MarkFlagRequired("role")

	skillgapListCmd.Flags().IntP("limit", "n", 10, "Number of reports to show")
	skillgapListCmd.Flags().BoolP("verbose", "v", false, "Print full reports")

	skillgapCmd.AddCommand(skillgapAnalyzeCmd)
	skillgapCmd.AddCommand(skillgapListCmd)
}
