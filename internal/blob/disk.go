package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads to the local filesystem, for development and
// single-node deployments without object storage.
type DiskStore struct {
	dir    string
	public string
}

// NewDiskStore prepares the upload directory.
func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, public: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Put writes the object under the upload directory and returns the URL the
// static file route serves it from.
func (s *DiskStore) Put(ctx context.Context, key string, contentType string, size int64, body io.Reader) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload subdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.public + "/uploads/" + key, nil
}
