// validation.go - Upload input validation helpers
package server

import (
	"mime"
	"path/filepath"
)

// allowedImageTypes defines the content types accepted for animal images.
var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/bmp":     true,
	"image/tiff":    true,
	"image/avif":    true,
}

// allowedImageType reports whether the declared content type is an
// acceptable image format. Parameters (e.g. "; charset=") are ignored.
func allowedImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return allowedImageTypes[mediaType]
}

// sniffImageType falls back to the file extension when the part carries no
// usable Content-Type header.
func sniffImageType(filename string) string {
	return mime.TypeByExtension(filepath.Ext(filename))
}
