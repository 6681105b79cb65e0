package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_DisabledWhenNoOrigins(t *testing.T) {
	handler := corsHandler(CORSConfig{})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.Header.Set("Origin", "https://app.paperhub.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("Allow-Origin = %q, want unset when no origins configured", origin)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "https://app.paperhub.example"},
		AllowCredentials: true,
	})

	for _, origin := range []string{"http://localhost:3000", "https://app.paperhub.example"} {
		t.Run(origin, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/feed", nil)
			r.Header.Set("Origin", origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Errorf("Allow-Origin = %q, want %q", got, origin)
			}
			if creds := w.Header().Get("Access-Control-Allow-Credentials"); creds != "true" {
				t.Errorf("Allow-Credentials = %q, want true", creds)
			}

			// The method and header grants belong to the preflight only.
			if methods := w.Header().Get("Access-Control-Allow-Methods"); methods != "" {
				t.Errorf("Allow-Methods = %q, want unset on actual request", methods)
			}
			if headers := w.Header().Get("Access-Control-Allow-Headers"); headers != "" {
				t.Errorf("Allow-Headers = %q, want unset on actual request", headers)
			}
		})
	}
}

func TestCORS_ActualRequestExposesCacheHeaders(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Cache, X-Request-ID" {
		t.Errorf("Expose-Headers = %q, want %q", got, "X-Cache, X-Request-ID")
	}
}

func TestCORS_UnauthorizedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("Allow-Origin = %q, want unset for rejected origin", origin)
	}
}

func TestCORS_NoOriginHeaderPassesThrough(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for same-origin request", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("Allow-Origin = %q, want unset for same-origin request", origin)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           3600,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler called for preflight request")
	}))

	r := httptest.NewRequest(http.MethodOptions, "/papers", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE" {
		t.Errorf("Allow-Methods = %q, want %q", got, "GET, POST, DELETE")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-User-ID" {
		t.Errorf("Allow-Headers = %q, want %q", got, "Content-Type, X-User-ID")
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Max-Age = %q, want 3600", got)
	}
}

func TestCORS_PreflightDefaults(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := httptest.NewRequest(http.MethodOptions, "/papers", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PATCH, DELETE, OPTIONS" {
		t.Errorf("Allow-Methods = %q, want the API's verbs", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-User-ID, X-Request-ID" {
		t.Errorf("Allow-Headers = %q, want the API's request headers", got)
	}
}

func TestCORS_PreflightUnauthorizedOrigin(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler called for rejected preflight request")
	}))

	r := httptest.NewRequest(http.MethodOptions, "/papers", nil)
	r.Header.Set("Origin", "https://evil.example")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCORS_CredentialsDisabled(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if creds := w.Header().Get("Access-Control-Allow-Credentials"); creds != "" {
		t.Errorf("Allow-Credentials = %q, want unset", creds)
	}
}

func TestCORS_OriginListNormalization(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"  http://localhost:3000  ", "", "https://app.paperhub.example"},
	})

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after trimming whitespace", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
