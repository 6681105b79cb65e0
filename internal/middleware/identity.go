package middleware

import "net/http"

// UserIDHeader carries the caller's user ID. Authentication happens at the
// edge; this service trusts the gateway-injected identity header.
const UserIDHeader = "X-User-ID"

// Identity is a middleware that resolves the caller's user ID from the
// identity header into the request context. Requests without the header
// proceed anonymously; handlers that require identity reject them.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(UserIDHeader); id != "" {
			r = r.WithContext(SetUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
