package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Reader provides read access to the ClickHouse query_events table for
// the audit history endpoint.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	conn, err := openClickHouse(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the ClickHouse connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// EventRow is a single row from the query_events table.
type EventRow struct {
	RequestID  string
	Timestamp  time.Time
	Question   string
	SQLPreview string
	Verdict    string
	Reason     string
	Executed   uint8
	RowCount   uint32
	LatencyMs  float32
	Source     string
}

// ListRecent returns the most recent query events, newest first.
func (r *Reader) ListRecent(ctx context.Context, limit int) ([]EventRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.conn.Query(ctx, `
		SELECT request_id, timestamp, question, sql_preview,
		       verdict, reason, executed, row_count, latency_ms, source
		FROM query_events
		ORDER BY timestamp DESC
		LIMIT @limit`,
		clickhouse.Named("limit", limit),
	)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(
			&e.RequestID, &e.Timestamp, &e.Question, &e.SQLPreview,
			&e.Verdict, &e.Reason, &e.Executed, &e.RowCount, &e.LatencyMs, &e.Source,
		); err != nil {
			return nil, fmt.Errorf("ListRecent: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
