package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorageService stores ticket documents on local disk when R2
// is not configured or unreachable. URLs point back at this server's
// static file route.
type LocalStorageService struct {
	basePath string
	baseURL  string
}

// NewLocalStorageService creates a local disk storage service
func NewLocalStorageService(basePath, baseURL string) *LocalStorageService {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Printf("⚠️ Failed to create storage directory %s: %v", basePath, err)
	}

	return &LocalStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// Upload saves a document to local disk
func (f *LocalStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	key = strings.TrimPrefix(key, "/")
	fullPath := filepath.Join(f.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if size > 0 && written != size {
		return "", fmt.Errorf("size mismatch writing %s: expected %d bytes, wrote %d", key, size, written)
	}

	return f.GetURL(key), nil
}

// Delete removes a document from local disk
func (f *LocalStorageService) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(key, "/")
	fullPath := filepath.Join(f.basePath, key)

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	return nil
}

// GetURL returns the serving URL for a stored document
func (f *LocalStorageService) GetURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("%s/tickets/files/%s", f.baseURL, key)
}

// Exists checks whether a document is present on disk
func (f *LocalStorageService) Exists(ctx context.Context, key string) (bool, error) {
	key = strings.TrimPrefix(key, "/")
	_, err := os.Stat(filepath.Join(f.basePath, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

// BasePath exposes the on-disk root for static file serving
func (f *LocalStorageService) BasePath() string {
	return f.basePath
}
