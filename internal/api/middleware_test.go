package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func authedDeps(t *testing.T, key string) *Dependencies {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &Dependencies{
		Logger:     zap.NewNop(),
		APIKeyHash: string(hash),
	}
}

func authedHandler(d *Dependencies) (http.HandlerFunc, *int) {
	calls := 0
	h := d.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})
	return h, &calls
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	d := authedDeps(t, "sk-valid-key")
	h, calls := authedHandler(d)

	req := httptest.NewRequest(http.MethodGet, "/api/deadstock", nil)
	req.Header.Set("Authorization", "Bearer sk-valid-key")
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK || *calls != 1 {
		t.Errorf("status = %d, calls = %d", rec.Code, *calls)
	}
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	d := authedDeps(t, "sk-valid-key")
	h, calls := authedHandler(d)

	req := httptest.NewRequest(http.MethodGet, "/api/deadstock", nil)
	req.Header.Set("Authorization", "Bearer sk-wrong-key")
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *calls != 0 {
		t.Error("handler must not run on auth failure")
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	d := authedDeps(t, "sk-valid-key")
	h, calls := authedHandler(d)

	req := httptest.NewRequest(http.MethodGet, "/api/deadstock", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusUnauthorized || *calls != 0 {
		t.Errorf("status = %d, calls = %d", rec.Code, *calls)
	}
}

func TestAuthMiddleware_PassThroughWhenUnconfigured(t *testing.T) {
	d := &Dependencies{Logger: zap.NewNop()}
	h, calls := authedHandler(d)

	req := httptest.NewRequest(http.MethodGet, "/api/deadstock", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK || *calls != 1 {
		t.Errorf("status = %d, calls = %d", rec.Code, *calls)
	}
}

func TestAuthMiddleware_CachesVerifiedKey(t *testing.T) {
	d := authedDeps(t, "sk-valid-key")
	h, calls := authedHandler(d)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/deadstock", nil)
		req.Header.Set("Authorization", "Bearer sk-valid-key")
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if *calls != 3 {
		t.Errorf("calls = %d, want 3", *calls)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid", "Bearer sk-abc", "sk-abc", true},
		{"empty", "", "", false},
		{"wrong scheme", "Basic dXNlcg==", "", false},
		{"trailing space", "Bearer sk-abc ", "sk-abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := extractBearerToken(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("extractBearerToken = %q, %v", got, ok)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the next handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
