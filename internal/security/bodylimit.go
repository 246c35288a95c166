package security

import "net/http"

// BodyLimit caps request payload sizes. Requests declaring a larger
// Content-Length are rejected up front with 413; chunked bodies are capped
// during reads via http.MaxBytesReader, which fails the handler's decode.
type BodyLimit struct {
	Max int64
}

// Middleware enforces the limit on the wrapped handler.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
