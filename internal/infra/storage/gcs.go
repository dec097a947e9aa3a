package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/sirupsen/logrus"
)

// GCSObjectReader reads one object out of a Google Cloud Storage bucket.
// It implements manifest.ObjectReader.
type GCSObjectReader struct {
	client *storage.Client
	bucket string
	object string
	logger *logrus.Logger
}

// NewGCSObjectReader creates the GCS client. Credentials come from the
// ambient service account (Application Default Credentials).
func NewGCSObjectReader(ctx context.Context, bucket, object string, logger *logrus.Logger) (*GCSObjectReader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSObjectReader{
		client: client,
		bucket: bucket,
		object: object,
		logger: logger,
	}, nil
}

// Read fetches the full object content.
func (r *GCSObjectReader) Read(ctx context.Context) ([]byte, error) {
	r.logger.Infof("Fetching manifest gs://%s/%s", r.bucket, r.object)
	reader, err := r.client.Bucket(r.bucket).Object(r.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", r.bucket, r.object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", r.bucket, r.object, err)
	}
	return data, nil
}

// Close releases the underlying client.
func (r *GCSObjectReader) Close() error {
	return r.client.Close()
}
