package services

import (
	"context"
	"io"
	"log"
	"time"

	"dandiya-ticketing-platform/internal/config"
)

// StorageService stores rendered ticket documents and hands back
// public URLs for notification channels to reference.
type StorageService interface {
	// Upload stores a document and returns its public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a stored document
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored document
	GetURL(key string) string

	// Exists checks whether a document is present
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorageService builds the ticket document store: R2 when
// configured and reachable, local disk otherwise. Ticket issuance
// never depends on which one is active.
func NewStorageService(cfg config.StorageConfig, serverBaseURL string) StorageService {
	local := NewLocalStorageService(cfg.FallbackDir, serverBaseURL)

	r2, err := NewR2Service(cfg)
	if err != nil {
		log.Printf("⚠️ R2 storage unavailable, using local ticket storage: %v", err)
		return local
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r2.HealthCheck(ctx); err != nil {
		log.Printf("⚠️ R2 health check failed, using local ticket storage: %v", err)
		return local
	}

	log.Printf("✅ R2 ticket storage initialized (bucket %s)", cfg.BucketName)
	return r2
}
