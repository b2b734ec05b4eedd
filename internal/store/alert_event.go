package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var alertEventColumns = []string{
	"id", "sequence", "timestamp", "student", "recipient", "body",
	"outcome", "message_id", "error_message",
}

func (r *eventRepo) AppendAlert(ctx context.Context, data AlertEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAlertEvents).
		Columns(alertEventColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.Student, data.Recipient, data.Body,
			data.Outcome, data.MessageID, data.ErrorMessage,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save alert event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAlerts(ctx context.Context, opts QueryOpts) ([]AlertEventRecord, error) {
	query, args := eventQuery(tableAlertEvents, alertEventColumns, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alert events: %w", err)
	}
	defer rows.Close()

	var records []AlertEventRecord
	for rows.Next() {
		var e AlertEventRecord
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.Student, &e.Recipient, &e.Body,
			&e.Outcome, &e.MessageID, &e.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan alert event: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}
