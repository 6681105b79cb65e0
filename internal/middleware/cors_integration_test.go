package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// Mirrors the server's outer chain: RequestID wraps Identity wraps CORS.
func TestCORS_WithRequestIDAndIdentity(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		MaxAge:           3600,
	}

	var sawUserID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	stack := RequestID(Identity(CORS(cfg)(handler)))

	t.Run("preflight carries a request ID", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/papers", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		stack.ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q", origin)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID not set on preflight response")
		}
	})

	t.Run("cross-origin request keeps its identity", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/feed", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		stack.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if sawUserID != "user-1" {
			t.Errorf("user ID seen by handler = %q, want user-1", sawUserID)
		}
		if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q", origin)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID not set")
		}
	})

	t.Run("rejected origin still gets a request ID", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/feed", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		stack.ServeHTTP(w, r)

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID not set on rejected request")
		}
		if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "" {
			t.Errorf("Allow-Origin = %q, want unset", origin)
		}
	})
}
