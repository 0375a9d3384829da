package service

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// AttachmentStore persists attachment content. The catalog keeps only
// metadata; content lives in object storage.
type AttachmentStore interface {
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (url string, err error)
}

// MinioAttachmentStore stores attachment content in a MinIO bucket.
type MinioAttachmentStore struct {
	client *minio.Client
	bucket string
}

func NewMinioAttachmentStore(client *minio.Client, bucket string) *MinioAttachmentStore {
	return &MinioAttachmentStore{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioAttachmentStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioAttachmentStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("/%s/%s", s.bucket, key), nil
}
