package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stocksense-ai/stocksense/internal/gateway"
	"github.com/stocksense-ai/stocksense/internal/storage"
)

// handleQuery implements POST /api/query. Whatever happens inside the
// gateway, the response is a 200 with a structured envelope; HTTP error
// codes are reserved for malformed requests.
func (d *Dependencies) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QueryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "question is required"})
		return
	}

	envelope, outcome := d.Gateway.Answer(r.Context(), req.Question)

	requestID := uuid.New().String()
	latencyMs := float32(float64(time.Since(start)) / float64(time.Millisecond))

	// Fire-and-forget audit event.
	d.writeQueryEvent(requestID, req.Question, envelope, outcome, latencyMs)

	writeJSON(w, http.StatusOK, envelope)
}

func (d *Dependencies) writeQueryEvent(
	requestID, question string,
	envelope gateway.Envelope,
	outcome gateway.Outcome,
	latencyMs float32,
) {
	verdict := "reject"
	reason := outcome.Verdict.Reason.String()
	switch {
	case !outcome.Generated:
		verdict = "reject"
		reason = "generator_unavailable"
	case outcome.Verdict.Allowed:
		verdict = "allow"
		reason = ""
	}

	hashBytes := sha256.Sum256([]byte(envelope.SQLQuery))

	d.Writer.Write(&storage.QueryEvent{
		RequestID:  requestID,
		Timestamp:  time.Now(),
		Question:   question,
		SQLPreview: storage.TruncateSQL(envelope.SQLQuery, storage.SQLPreviewLength),
		SQLHash:    hex.EncodeToString(hashBytes[:]),
		SQLSize:    uint32(len(envelope.SQLQuery)),
		Verdict:    verdict,
		Reason:     reason,
		Executed:   outcome.Executed,
		RowCount:   uint32(outcome.RowCount),
		LatencyMs:  latencyMs,
		Source:     "api",
	})
}
