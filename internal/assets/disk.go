package assets

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Disk stores assets as plain files under a single directory.
type Disk struct {
	dir string
}

// NewDisk ensures the upload directory exists and returns a disk store.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("assets: upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Save(_ context.Context, r io.Reader, origName, contentType string) (Asset, error) {
	name := newName(origName)

	f, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return Asset{}, fmt.Errorf("assets: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return Asset{}, fmt.Errorf("assets: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return Asset{}, fmt.Errorf("assets: close file: %w", err)
	}

	return Asset{Path: pathPrefix + name, ContentType: contentType}, nil
}

func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, int64, string, error) {
	if !validName(name) {
		return nil, 0, "", ErrNotFound
	}

	f, err := os.Open(filepath.Join(d.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, "", ErrNotFound
		}
		return nil, 0, "", fmt.Errorf("assets: open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, "", fmt.Errorf("assets: stat file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, info.Size(), contentType, nil
}

func (d *Disk) Check(_ context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil {
		return fmt.Errorf("assets: upload dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("assets: %s is not a directory", d.dir)
	}
	return nil
}
