package store

import (
	"context"
	"fmt"
	"math"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/llm"
)

const llmEventTable = "llm_events"

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo on the llm_events table.
type eventRepo struct {
	drv   *entsql.Driver
	clock clock.Clock
}

type llmEventRow struct {
	ID           int64  `sql:"id"`
	Timestamp    int64  `sql:"timestamp"`
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	LatencyMs    int64  `sql:"latency_ms"`
	Success      bool   `sql:"success"`
	ErrorMessage string `sql:"error_message"`
	RequestBody  string `sql:"request_body"`
	ResponseBody string `sql:"response_body"`
}

func (row llmEventRow) event() LLMEvent {
	return LLMEvent{
		ID:        row.ID,
		Timestamp: fromMillis(row.Timestamp),
		RequestEvent: llm.RequestEvent{
			Provider:     row.Provider,
			Model:        row.Model,
			Purpose:      row.Purpose,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			LatencyMs:    row.LatencyMs,
			Success:      row.Success,
			ErrorMessage: row.ErrorMessage,
			RequestBody:  row.RequestBody,
			ResponseBody: row.ResponseBody,
		},
	}
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data llm.RequestEvent) error {
	ins := builder().Insert(llmEventTable).
		Columns(llmEventColumns[1:]...).
		Values(millis(r.clock.Now()), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err := exec(ctx, r.drv, ins); err != nil {
		return fail("save LLM request event", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(llmEventColumns...).
		From(builder().Table(llmEventTable)).
		OrderBy(entsql.Desc("id"))
	if opts.After > 0 {
		sel.Where(entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("id", opts.Before))
	}
	sel = paginate(timeRange(sel, "timestamp", opts), opts)

	rows, err := scanAll[llmEventRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fail("query LLM events", err)
	}
	out := make([]LLMEvent, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (LLMEvent, error) {
	sel := builder().Select(llmEventColumns...).
		From(builder().Table(llmEventTable)).
		Where(entsql.EQ("id", id))
	rows, err := scanAll[llmEventRow](ctx, r.drv, sel)
	if err != nil {
		return LLMEvent{}, fail("get LLM event", err)
	}
	if len(rows) == 0 {
		return LLMEvent{}, fmt.Errorf("LLM event %d: %w", id, ErrNotFound)
	}
	return rows[0].event(), nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

type usageRow struct {
	Name         string  `sql:"name"`
	Calls        int     `sql:"calls"`
	InputTokens  int     `sql:"input_tokens"`
	OutputTokens int     `sql:"output_tokens"`
	AvgLatency   float64 `sql:"avg_latency"`
}

func (r *eventRepo) usageBy(ctx context.Context, col string) ([]LLMUsage, error) {
	sel := builder().Select(
		entsql.As(col, "name"),
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(builder().Table(llmEventTable)).
		GroupBy(col).
		OrderBy(entsql.Desc("calls"))

	rows, err := scanAll[usageRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fail("aggregate LLM usage by "+col, err)
	}
	out := make([]LLMUsage, len(rows))
	for i, row := range rows {
		out[i] = LLMUsage{
			Key:          row.Name,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			AvgLatencyMs: int64(math.Round(row.AvgLatency)),
		}
	}
	return out, nil
}
