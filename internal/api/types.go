package api

import "time"

// --- POST /api/query ---

// QueryRequest is the JSON body for the natural-language query endpoint.
type QueryRequest struct {
	Question string `json:"question"`
}

// The response body is the gateway.Envelope: {sql_query, results, error}.

// --- GET /api/queries ---

// QueryEventResp is one audit-trail entry.
type QueryEventResp struct {
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	Question   string    `json:"question"`
	SQLPreview string    `json:"sql_preview"`
	Verdict    string    `json:"verdict"`
	Reason     *string   `json:"reason"`
	Executed   bool      `json:"executed"`
	RowCount   uint32    `json:"row_count"`
	LatencyMs  float32   `json:"latency_ms"`
}

// QueryHistoryResp wraps the audit listing.
type QueryHistoryResp struct {
	Events []QueryEventResp `json:"events"`
}

// ErrorResp is a standard error response body.
type ErrorResp struct {
	Detail string `json:"detail"`
}
