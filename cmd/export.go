package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
)

// exportDoc is the full dump written by `examprep export`.
type exportDoc struct {
	ExportedAt time.Time           `json:"exportedAt" yaml:"exportedAt"`
	Version    string              `json:"version" yaml:"version"`
	StudyLogs  []studylog.Entry    `json:"studyLogs" yaml:"studyLogs"`
	Exams      []exam.Record       `json:"exams" yaml:"exams"`
	Interviews []interview.Session `json:"interviews" yaml:"interviews"`
	SkillGaps  []skillgap.Report   `json:"skillGaps" yaml:"skillGaps"`
}

func newExportDoc(in analytics.Input, at time.Time) exportDoc {
	return exportDoc{
		ExportedAt: at.UTC(),
		Version:    version,
		StudyLogs:  in.Logs,
		Exams:      in.Exams,
		Interviews: in.Interviews,
		SkillGaps:  in.SkillGaps,
	}
}

// writeExport encodes doc as yaml or json.
func writeExport(w io.Writer, format string, doc exportDoc) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return fmt.Errorf("unknown export format %q (want yaml or json)", format)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all study logs, exams, interviews and skill-gap reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		in, err := store.LoadInput(cmd.Context(), s.StudyLogRepo(), s.ExamRepo(), s.InterviewRepo(), s.SkillGapRepo())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		doc := newExportDoc(in, time.Now())

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := writeExport(w, format, doc); err != nil {
			return err
		}
		if output != "" && output != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d study logs, %d exams, %d interviews, %d skill-gap reports to %s\n",
				len(doc.StudyLogs), len(doc.Exams), len(doc.Interviews), len(doc.SkillGaps), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
