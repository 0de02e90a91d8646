// Package blob stores uploaded profile images and hands back public URLs.
package blob

import (
	"context"
	"io"
	"log"

	"github.com/ServanaApplication/servana-backend/internal/config"
)

// Store writes an object and returns the URL clients use to fetch it.
type Store interface {
	Put(ctx context.Context, key string, contentType string, size int64, body io.Reader) (string, error)
}

// NewStore builds a MinIO-backed store, or a local-disk store when no object
// storage endpoint is configured.
func NewStore(cfg *config.Config) (Store, error) {
	if cfg.MinioEndpoint == "" {
		log.Printf("object storage disabled, storing uploads under %s", cfg.UploadDir)
		return NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	}
	return NewMinioStore(cfg)
}
