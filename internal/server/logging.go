package server

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// logRequests logs one line per request with request id, method, path,
// status, timing, and response size, and feeds the request metrics.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := chimw.GetReqID(r.Context())
		w.Header().Set("X-Request-Id", rid)

		// Wrap ResponseWriter to capture status code and response size
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		elapsed := time.Since(start)
		s.log.Info("request", map[string]any{
			"request_id": rid,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     lrw.status,
			"ms":         elapsed.Milliseconds(),
			"bytes":      lrw.size,
			"ip":         r.RemoteAddr,
		})

		recordRequest(r.Method, lrw.status, elapsed)
	})
}

// securityHeaders adds conservative defaults to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
