package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record and list daily study logs",
}

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log study hours for a day",
	Long:  "Log study hours for a day. Logging a day that already has an entry adds to it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetFloat64("hours")
		topics, _ := cmd.Flags().GetString("topics")
		notes, _ := cmd.Flags().GetString("notes")
		dateStr, _ := cmd.Flags().GetString("date")

		today := timewindow.Today(clock.Real{})
		date := today
		if dateStr != "" {
			d, err := timewindow.ParseDay(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", dateStr)
			}
			date = d
		}
		if date.After(today) {
			return fmt.Errorf("cannot log a future date (%s)", date)
		}
		if err := studylog.ValidateFormHours(hours); err != nil {
			return err
		}

		entry := studylog.Entry{
			Date:   date,
			Hours:  hours,
			Topics: studylog.ParseTopics(topics),
			Notes:  notes,
		}
		if err := entry.Validate(); err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		stored, err := s.StudyLogRepo().Upsert(cmd.Context(), entry)
		if errors.Is(err, studylog.ErrInvalidEntry) {
			return fmt.Errorf("%s already has entries; together they would exceed %d hours", date, studylog.MaxHours)
		}
		if err != nil {
			return fmt.Errorf("save study log: %w", err)
		}
		rt.log.Info("study log saved", zap.String("date", stored.Date.String()), zap.Float64("hours", stored.Hours))

		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %.1fh total", stored.Date, stored.Hours)
		if len(stored.Topics) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", strings.Join(stored.Topics, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List study logs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.StudyLogRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list study logs: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No study logged yet.")
			return nil
		}

		fmt.Fprintf(out, "%-10s  %6s  %-40s  %s\n", "Date", "Hours", "Topics", "Notes")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, e := range entries {
			notes := strings.ReplaceAll(e.Notes, "\n", " / ")
			fmt.Fprintf(out, "%-10s  %6.1f  %-40s  %s\n",
				e.Date, e.Hours, truncate(strings.Join(e.Topics, ", "), 40), truncate(notes, 40))
		}
		fmt.Fprintln(out, strings.Repeat("─", 80))
		fmt.Fprintf(out, "%-10s  %6.1f\n", "TOTAL", studylog.TotalHours(entries))
		return nil
	},
}

func init() {
	logAddCmd.Flags().Float64("hours", 0, "Hours studied, 0 to 24 in half-hour steps")
	logAddCmd.Flags().String("topics", "", "Comma-separated topics, e.g. \"Trees, Graphs\"")
	logAddCmd.Flags().String("notes", "", "Free-form notes")
	logAddCmd.Flags().String("date", "", "Day to log as YYYY-MM-DD (default today)")
	logAddCmd.MarkFlagRequired("hours")

	logListCmd.Flags().IntP("limit", "n", 30, "Number of days to show")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
}
