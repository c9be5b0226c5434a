// Package minio implements the raw-document blob store on MinIO or any
// S3-compatible endpoint.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
)

// objectAPI is the slice of the MinIO client the store needs; narrowed for
// testability.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// BlobStore is the MinIO implementation of document.BlobStore.
type BlobStore struct {
	client objectAPI
	bucket string
	log    logging.Logger
}

// NewBlobStore connects to the configured endpoint and ensures the bucket
// exists.
func NewBlobStore(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "create minio client")
	}

	store := newBlobStoreWithClient(client, cfg, log)
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.ensureBucket(ensureCtx); err != nil {
		return nil, err
	}

	store.log.Info("object storage ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", store.bucket))
	return store, nil
}

func newBlobStoreWithClient(client objectAPI, cfg config.MinIOConfig, log logging.Logger) *BlobStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "policylens-documents"
	}
	return &BlobStore{client: client, bucket: bucket, log: log.Named("minio")}
}

func (s *BlobStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "create bucket")
	}
	return nil
}

// Put uploads a raw document under the given key.
func (s *BlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "put object")
	}
	s.log.Debug("stored blob", logging.String("key", key), logging.Int64("size", size))
	return nil
}

// Get opens a stored document for reading.  The caller owns the returned
// reader.
func (s *BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "get object")
	}
	return obj, nil
}

// Remove deletes a stored document.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "remove object")
	}
	return nil
}
