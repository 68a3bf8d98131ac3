package api

import (
	"context"
	"net/http"

	"github.com/stocksense-ai/stocksense/internal/analytics"
	"github.com/stocksense-ai/stocksense/internal/gateway"
	"github.com/stocksense-ai/stocksense/internal/storage"
	"go.uber.org/zap"
)

// QueryGateway answers natural-language questions. Satisfied by
// *gateway.Gateway; an interface here so handler tests can stub it.
type QueryGateway interface {
	Answer(ctx context.Context, question string) (gateway.Envelope, gateway.Outcome)
}

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Gateway    QueryGateway
	Analytics  *analytics.Store
	Writer     storage.EventWriter
	Reader     *storage.Reader // nil if ClickHouse unavailable
	Logger     *zap.Logger
	APIKeyHash string // bcrypt hash; empty disables auth
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Natural-language query gateway
	mux.HandleFunc("POST /api/query", deps.authMiddleware(deps.handleQuery))

	// Fixed analytics reports
	mux.HandleFunc("GET /api/deadstock", deps.authMiddleware(deps.handleDeadStock))
	mux.HandleFunc("POST /api/recommendations/{product_id}", deps.authMiddleware(deps.handleRecommendation))

	// Query audit trail
	mux.HandleFunc("GET /api/queries", deps.authMiddleware(deps.handleQueryHistory))

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
