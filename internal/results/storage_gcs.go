package results

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements StorageClient using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSStorage creates a GCS-backed StorageClient.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket, prefix string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSStorage) put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs read %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) PutResults(ctx context.Context, cycleID, runID string, data []byte) error {
	key, err := objectKey(s.prefix, cycleID, "results", runID)
	if err != nil {
		return err
	}
	return s.put(ctx, key, data)
}

func (s *GCSStorage) GetResults(ctx context.Context, cycleID, runID string) ([]byte, error) {
	key, err := objectKey(s.prefix, cycleID, "results", runID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, key)
}

func (s *GCSStorage) PutInput(ctx context.Context, cycleID, runID string, data []byte) error {
	key, err := objectKey(s.prefix, cycleID, "inputs", runID)
	if err != nil {
		return err
	}
	return s.put(ctx, key, data)
}

func (s *GCSStorage) GetInput(ctx context.Context, cycleID, runID string) ([]byte, error) {
	key, err := objectKey(s.prefix, cycleID, "inputs", runID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, key)
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
