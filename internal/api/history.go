package api

import (
	"net/http"

	"go.uber.org/zap"
)

// handleQueryHistory implements GET /api/queries. Requires the
// ClickHouse reader; without it the audit trail lives only in logs.
func (d *Dependencies) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Query history storage is not configured"})
		return
	}

	limit, ok := intQueryParam(r, "limit", 50)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "limit must be an integer"})
		return
	}

	events, err := d.Reader.ListRecent(r.Context(), limit)
	if err != nil {
		d.Logger.Error("failed to list query events", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list query events"})
		return
	}

	resp := QueryHistoryResp{Events: make([]QueryEventResp, 0, len(events))}
	for _, e := range events {
		var reason *string
		if e.Reason != "" {
			v := e.Reason
			reason = &v
		}
		resp.Events = append(resp.Events, QueryEventResp{
			RequestID:  e.RequestID,
			Timestamp:  e.Timestamp,
			Question:   e.Question,
			SQLPreview: e.SQLPreview,
			Verdict:    e.Verdict,
			Reason:     reason,
			Executed:   e.Executed == 1,
			RowCount:   e.RowCount,
			LatencyMs:  e.LatencyMs,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
