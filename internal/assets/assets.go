// Package assets stores and serves uploaded image files. The record store
// only ever sees the retrieval path and content type; where the bytes land
// (local disk or MinIO) is an implementation concern behind Store.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open when no asset has the given name.
var ErrNotFound = errors.New("assets: not found")

// Asset describes a stored file: the path clients retrieve it from and the
// content type it should be served with.
type Asset struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// Store persists uploaded files under collision-resistant names.
type Store interface {
	// Save writes the bytes and returns the retrieval reference.
	Save(ctx context.Context, r io.Reader, origName, contentType string) (Asset, error)

	// Open streams a previously stored asset by its generated name.
	// Returns ErrNotFound if the name is unknown.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, string, error)

	// Check probes the backing storage for health reporting.
	Check(ctx context.Context) error
}

// pathPrefix is where stored assets are mounted for retrieval.
const pathPrefix = "/uploads/"

// newName builds a collision-resistant file name: millisecond timestamp,
// a short random suffix, and the original extension (lowercased).
func newName(origName string) string {
	ext := strings.ToLower(filepath.Ext(origName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// validName rejects anything that could escape the storage root. Generated
// names never contain separators, so a single path element is all we serve.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
