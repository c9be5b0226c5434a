package minio

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/pkg/errors"
)

type stubAPI struct {
	bucketExists bool
	madeBucket   string
	putKey       string
	putBody      string
	putType      string
	removedKey   string
	err          error
}

func (s *stubAPI) BucketExists(_ context.Context, _ string) (bool, error) {
	return s.bucketExists, s.err
}

func (s *stubAPI) MakeBucket(_ context.Context, name string, _ minio.MakeBucketOptions) error {
	s.madeBucket = name
	return s.err
}

func (s *stubAPI) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if s.err != nil {
		return minio.UploadInfo{}, s.err
	}
	body, _ := io.ReadAll(r)
	s.putKey = key
	s.putBody = string(body)
	s.putType = opts.ContentType
	return minio.UploadInfo{Key: key}, nil
}

func (s *stubAPI) GetObject(_ context.Context, _, _ string, _ minio.GetObjectOptions) (*minio.Object, error) {
	return nil, s.err
}

func (s *stubAPI) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	if s.err != nil {
		return s.err
	}
	s.removedKey = key
	return nil
}

func newTestStore(stub *stubAPI) *BlobStore {
	return newBlobStoreWithClient(stub, config.MinIOConfig{Bucket: "docs"}, nil)
}

func TestBlobStore_Put(t *testing.T) {
	stub := &stubAPI{}
	store := newTestStore(stub)

	err := store.Put(context.Background(), "uploads/a.pdf", strings.NewReader("pdf bytes"), 9, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.pdf", stub.putKey)
	assert.Equal(t, "pdf bytes", stub.putBody)
	assert.Equal(t, "application/pdf", stub.putType)
}

func TestBlobStore_PutErrorWrapped(t *testing.T) {
	store := newTestStore(&stubAPI{err: assert.AnError})

	err := store.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocumentStoreFailed, errors.GetCode(err))
}

func TestBlobStore_Remove(t *testing.T) {
	stub := &stubAPI{}
	store := newTestStore(stub)

	require.NoError(t, store.Remove(context.Background(), "uploads/a.pdf"))
	assert.Equal(t, "uploads/a.pdf", stub.removedKey)
}

func TestEnsureBucket_CreatesWhenMissing(t *testing.T) {
	stub := &stubAPI{bucketExists: false}
	store := newTestStore(stub)

	require.NoError(t, store.ensureBucket(context.Background()))
	assert.Equal(t, "docs", stub.madeBucket)
}

func TestEnsureBucket_SkipsWhenPresent(t *testing.T) {
	stub := &stubAPI{bucketExists: true}
	store := newTestStore(stub)

	require.NoError(t, store.ensureBucket(context.Background()))
	assert.Empty(t, stub.madeBucket)
}

func TestDefaultBucketName(t *testing.T) {
	store := newBlobStoreWithClient(&stubAPI{}, config.MinIOConfig{}, nil)
	assert.Equal(t, "policylens-documents", store.bucket)
}
