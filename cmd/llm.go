package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
)

// featureNames maps the purpose recorded on each model call to the
// examprep feature that made it.
var featureNames = map[string]string{
	llm.PurposeQuestionGen:       "Exam questions",
	llm.PurposeInterviewFeedback: "Interview feedback",
	llm.PurposeSkillGap:          "Skill-gap analysis",
}

func featureName(purpose string) string {
	if name, ok := featureNames[purpose]; ok {
		return name
	}
	return purpose
}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Audit the model calls made for questions, feedback and skill-gap reports",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")
		if purpose != "" {
			if _, ok := featureNames[purpose]; !ok {
				return fmt.Errorf("unknown purpose %q (want %s)", purpose, strings.Join(knownPurposes(), ", "))
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		// Filters run in memory, so the limit is applied after them.
		opts := store.QueryOpts{Limit: limit}
		if purpose != "" || failedOnly {
			opts.Limit = 0
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query model calls: %w", err)
		}
		events = filterCalls(events, purpose, failedOnly, limit)

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No model calls recorded. Generate an exam or request feedback first.")
			return nil
		}
		writeCalls(out, events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("call id %q is not a number", args[0])
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no model call with id %d", id)
		}
		if err != nil {
			return fmt.Errorf("load model call %d: %w", id, err)
		}
		writeCall(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per feature and estimated spend per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by feature: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No model calls recorded yet.")
			return nil
		}
		writeUsage(out, byPurpose, byModel)
		return nil
	},
}

func knownPurposes() []string {
	keys := make([]string, 0, len(featureNames))
	for k := range featureNames {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// filterCalls keeps events matching purpose (any when empty) and, with
// failedOnly, only unsuccessful ones. limit <= 0 keeps everything.
func filterCalls(events []store.LLMEvent, purpose string, failedOnly bool, limit int) []store.LLMEvent {
	var out []store.LLMEvent
	for _, e := range events {
		if purpose != "" && e.Purpose != purpose {
			continue
		}
		if failedOnly && e.Success {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func writeCalls(w io.Writer, events []store.LLMEvent) {
	fmt.Fprintf(w, "%5s  %-16s  %-19s  %-24s  %13s  %7s  %s\n",
		"#", "When", "Feature", "Model", "Tokens in/out", "Latency", "Status")
	fmt.Fprintln(w, strings.Repeat("─", 104))
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed: " + truncate(e.ErrorMessage, 24)
		}
		fmt.Fprintf(w, "%5d  %-16s  %-19s  %-24s  %13s  %6.1fs  %s\n",
			e.ID,
			e.Timestamp.Local().Format("Jan 2 15:04:05"),
			featureName(e.Purpose),
			truncate(e.Model, 24),
			fmt.Sprintf("%d/%d", e.InputTokens, e.OutputTokens),
			float64(e.LatencyMs)/1000,
			status,
		)
	}
}

func writeCall(w io.Writer, e store.LLMEvent) {
	fmt.Fprintf(w, "Call #%d  %s\n", e.ID, e.Timestamp.Local().Format("Mon Jan 2 2006 15:04:05"))
	fmt.Fprintf(w, "%-10s %s\n", "Feature", featureName(e.Purpose))
	fmt.Fprintf(w, "%-10s %s / %s\n", "Backend", e.Provider, e.Model)
	fmt.Fprintf(w, "%-10s %d prompt, %d completion\n", "Tokens", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "%-10s %d ms\n", "Latency", e.LatencyMs)
	if e.Success {
		fmt.Fprintf(w, "%-10s ok\n", "Status")
	} else {
		fmt.Fprintf(w, "%-10s failed: %s\n", "Status", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"Prompt", e.RequestBody},
		{"Reply", e.ResponseBody},
	} {
		fmt.Fprintf(w, "\n== %s ==\n", part.title)
		if part.body == "" {
			fmt.Fprintln(w, "(not recorded)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

// writeUsage prints call and token counts per feature with each feature's
// share of all calls, then the estimated spend per model.
func writeUsage(w io.Writer, byPurpose, byModel []store.LLMUsage) {
	rule := strings.Repeat("─", 76)

	var calls, in, outTok int
	for _, u := range byPurpose {
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}

	fmt.Fprintln(w, "Model Calls by Feature")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-20s  %6s  %6s  %10s  %10s  %9s\n", "Feature", "Calls", "Share", "Prompt", "Completion", "Avg wait")
	for _, u := range byPurpose {
		share := 0.0
		if calls > 0 {
			share = float64(u.Calls) / float64(calls) * 100
		}
		fmt.Fprintf(w, "%-20s  %6d  %5.0f%%  %10d  %10d  %8.1fs\n",
			featureName(u.Key), u.Calls, share, u.InputTokens, u.OutputTokens, float64(u.AvgLatencyMs)/1000)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-20s  %6d  %6s  %10d  %10d\n", "All features", calls, "", in, outTok)

	if len(byModel) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated Spend by Model (USD)")
	fmt.Fprintln(w, rule)
	var spend float64
	var unpriced []string
	for _, u := range byModel {
		cost, known := llm.EstimateCost(u.Key, u.InputTokens, u.OutputTokens)
		price := "n/a"
		if known {
			spend += cost
			price = formatCost(cost)
		} else {
			unpriced = append(unpriced, u.Key)
		}
		fmt.Fprintf(w, "%-40s  %6d calls  %10s\n", truncate(u.Key, 40), u.Calls, price)
	}
	fmt.Fprintln(w, rule)
	total := "Total"
	if len(unpriced) > 0 {
		total = "Total (priced models only)"
	}
	fmt.Fprintf(w, "%-40s  %12s  %10s\n", total, "", formatCost(spend))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "No price list for: %s\n", strings.Join(unpriced, ", "))
	}
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls made for one feature (question-gen, interview-feedback, skill-gap)")
	llmListCmd.Flags().Bool("failed", false, "Only calls that returned an error")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
