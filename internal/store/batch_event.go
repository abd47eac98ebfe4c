package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var batchEventColumns = []string{
	"sequence", "timestamp", "batch_id", "source", "grade", "topic", "subtopic",
	"difficulty", "strategy", "requested", "ok_count", "malformed_count",
	"failed_count", "duration_ms",
}

func (r *eventRepo) AppendBatchEvent(ctx context.Context, data BatchEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(batchEventsTable).
		Columns(batchEventColumns...).
		Values(
			seqNum, time.Now().UnixMilli(), data.BatchID, data.Source, data.Grade, data.Topic, data.Subtopic,
			data.Difficulty, data.Strategy, data.Requested, data.OKCount, data.MalformedCount,
			data.FailedCount, data.DurationMs,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save batch event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryBatchEvents(ctx context.Context, opts QueryOpts) ([]BatchEvent, error) {
	preds := eventPredicates(opts)
	if opts.BatchID != "" {
		preds = append(preds, entsql.EQ("batch_id", opts.BatchID))
	}

	sel := builder().Select(batchEventColumns...).From(entsql.Table(batchEventsTable))
	query, args := applyOpts(sel, preds, opts.Limit).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	defer rows.Close()

	var out []BatchEvent
	for rows.Next() {
		var (
			ev BatchEvent
			ts int64
		)
		err := rows.Scan(
			&ev.Sequence, &ts, &ev.BatchID, &ev.Source, &ev.Grade, &ev.Topic, &ev.Subtopic,
			&ev.Difficulty, &ev.Strategy, &ev.Requested, &ev.OKCount, &ev.MalformedCount,
			&ev.FailedCount, &ev.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch event: %w", err)
		}
		ev.Timestamp = fromMillis(ts)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch events: %w", err)
	}
	return out, nil
}
