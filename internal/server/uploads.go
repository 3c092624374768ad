package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"animal-registry/internal/assets"
)

// serveUpload handles GET /uploads/{name}: streams a stored image back to
// the client, whichever backend holds the bytes.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, size, contentType, err := s.assets.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, "serve_upload", "Failed to fetch file.", err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
