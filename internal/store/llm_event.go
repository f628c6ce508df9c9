package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	repos
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	// id is an auto-increment column and is left to the database.
	cols := columnNames(LlmRequestsColumns)[1:]
	ins := r.builder().Insert(LlmRequestsTable.Name).
		Columns(cols...).
		Values(time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := r.selectEvents()

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc(sel.C("id")))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []LLMRequestEvent
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var e LLMRequestEvent
		if err := scanEvent(rows, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	var e LLMRequestEvent
	err := r.first(ctx, r.selectEvents().Where(entsql.EQ("id", id)), func(rows *sql.Rows) error {
		return scanEvent(rows, &e)
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	sel := r.builder().Select(
		"purpose",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Avg("latency_ms"),
	).From(r.builder().Table(LlmRequestsTable.Name)).
		GroupBy("purpose").
		OrderBy("purpose")

	var out []LLMUsageStats
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var s LLMUsageStats
		var avg float64
		if err := rows.Scan(&s.Purpose, &s.Calls, &s.InputTokens, &s.OutputTokens, &avg); err != nil {
			return err
		}
		s.AvgLatencyMs = int64(avg)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LLM usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	sel := r.builder().Select(
		"model",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
	).From(r.builder().Table(LlmRequestsTable.Name)).
		GroupBy("model").
		OrderBy("model")

	var out []LLMModelUsage
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var m LLMModelUsage
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LLM usage by model: %w", err)
	}
	return out, nil
}

func (r *eventRepo) selectEvents() *entsql.Selector {
	return r.builder().Select(columnNames(LlmRequestsColumns)...).
		From(r.builder().Table(LlmRequestsTable.Name))
}

func scanEvent(rows *sql.Rows, e *LLMRequestEvent) error {
	return rows.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
}
