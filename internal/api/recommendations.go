package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/stocksense-ai/stocksense/internal/analytics"
	"go.uber.org/zap"
)

// handleRecommendation implements POST /api/recommendations/{product_id}.
func (d *Dependencies) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "product_id must be a positive integer"})
		return
	}

	rec, err := d.Analytics.Recommend(r.Context(), productID)
	if errors.Is(err, analytics.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Product not found"})
		return
	}
	if err != nil {
		d.Logger.Error("recommendation failed",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to generate recommendation"})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
