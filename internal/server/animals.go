package server

import (
	"errors"
	"net/http"
	"strings"

	"animal-registry/internal/store"
)

// multipartMemory caps how much of the form is buffered in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// listAnimals handles GET /animals: every animal document, store order.
func (s *Server) listAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := s.store.ListAnimals(r.Context())
	if err != nil {
		s.serverError(w, r, "list_animals", "Failed to fetch animals.", err)
		return
	}
	if animals == nil {
		animals = []store.Animal{}
	}
	writeJSON(w, http.StatusOK, animals)
}

// createAnimal handles POST /animals: multipart form with a "name" field
// and an "image" file. The image lands in the asset store first; the record
// then references the stored path. There is no cross-store transaction: a
// record insert failure can orphan an asset, which is accepted.
func (s *Server) createAnimal(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.clientError(w, http.StatusRequestEntityTooLarge, "Image is too large.")
			return
		}
		s.clientError(w, http.StatusBadRequest, "Name and image are required.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	file, header, err := r.FormFile("image")
	if name == "" || err != nil {
		s.clientError(w, http.StatusBadRequest, "Name and image are required.")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if sniffed := sniffImageType(header.Filename); sniffed != "" {
			contentType = sniffed
		}
	}
	if !allowedImageType(contentType) {
		s.clientError(w, http.StatusBadRequest, "Unsupported image type.")
		return
	}

	asset, err := s.assets.Save(r.Context(), file, header.Filename, contentType)
	if err != nil {
		s.serverError(w, r, "store_image", "Failed to add animal.", err)
		return
	}
	uploadBytesTotal.Add(float64(header.Size))

	id, err := s.store.CreateAnimal(r.Context(), name, store.ImageRef{
		Path:        asset.Path,
		ContentType: asset.ContentType,
	})
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			s.clientError(w, http.StatusBadRequest, "Name and image are required.")
			return
		}
		s.serverError(w, r, "create_animal", "Failed to add animal.", err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResp{
		Message:  "Animal added successfully",
		AnimalID: id,
	})
}
