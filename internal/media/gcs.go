package media

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// GCSStore writes objects to a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore stores objects in bucket.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: strings.TrimSpace(bucket)}
}

// Put uploads data as bucket/id.
func (s *GCSStore) Put(ctx context.Context, id, contentType string, data []byte) (Object, error) {
	if s.bucket == "" {
		return Object{}, fmt.Errorf("bucket is empty")
	}

	w := s.client.Bucket(s.bucket).Object(id).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	w.ChunkSize = 0
	w.Metadata = map[string]string{"source": "listing-upload"}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("writing gs://%s/%s: %w", s.bucket, id, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("closing gs://%s/%s: %w", s.bucket, id, err)
	}

	return Object{URL: publicURL(s.bucket, id), StorageID: id}, nil
}

func publicURL(bucket, id string) string {
	return fmt.Sprintf("%s/%s/%s", gcsPublicBaseURL, bucket, id)
}
