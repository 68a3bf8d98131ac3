package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const (
	defaultStalenessDays = 90
	defaultMinQuantity   = 1
)

// handleDeadStock implements GET /api/deadstock.
func (d *Dependencies) handleDeadStock(w http.ResponseWriter, r *http.Request) {
	days, ok := intQueryParam(r, "days_since_last_sale", defaultStalenessDays)
	if !ok || days <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "days_since_last_sale must be a positive integer"})
		return
	}
	minQty, ok := intQueryParam(r, "min_quantity", defaultMinQuantity)
	if !ok || minQty < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "min_quantity must be a non-negative integer"})
		return
	}

	report, err := d.Analytics.DeadStock(r.Context(), days, minQty)
	if err != nil {
		d.Logger.Error("dead stock report failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to build dead stock report"})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// intQueryParam parses an optional integer query parameter.
func intQueryParam(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
