package storage

import "time"

// EventWriter is the interface for recording query audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *QueryEvent)
	Close()
}

// QueryEvent records one pass through the query gateway, whatever the
// outcome.
type QueryEvent struct {
	RequestID  string
	Timestamp  time.Time
	Question   string
	SQLPreview string // first 500 chars of the candidate query
	SQLHash    string // SHA256 of the full candidate query
	SQLSize    uint32
	Verdict    string // "allow" or "reject"
	Reason     string // rejection reason code, empty on allow
	Executed   bool
	RowCount   uint32
	LatencyMs  float32
	Source     string // "api"
}

// SQLPreviewLength is the max chars stored in sql_preview.
const SQLPreviewLength = 500

// TruncateSQL returns the first N characters (runes) of a query for
// preview storage. It never splits a multi-byte UTF-8 character.
func TruncateSQL(query string, maxLen int) string {
	runes := []rune(query)
	if len(runes) <= maxLen {
		return query
	}
	return string(runes[:maxLen])
}
