package middleware

import "net/http"

// BodyLimit caps every request body, photo uploads included, so one oversized
// multipart cannot exhaust the process. Reads past the cap fail inside the
// handler's decoder, which maps them to an invalid payload response.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
