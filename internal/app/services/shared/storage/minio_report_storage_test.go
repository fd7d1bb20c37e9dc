package storage

import (
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStater struct {
	objects map[string]bool
	err     error
}

func (f *fakeStater) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.err != nil {
		return minio.ObjectInfo{}, f.err
	}
	if f.objects[objectName] {
		return minio.ObjectInfo{Key: objectName}, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: minioNoSuchKeyCode, StatusCode: 404, BucketName: bucketName, Key: objectName}
}

func TestMinioReportStorage_ObjectExists(t *testing.T) {
	stater := &fakeStater{objects: map[string]bool{"reports/a1.pdf": true}}
	s := newMinioReportStorage(stater, "reports", zap.NewNop())

	exists, err := s.ObjectExists(context.Background(), "reports/a1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ObjectExists(context.Background(), "reports/missing.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, "reports", s.BucketName())
}

func TestMinioReportStorage_ObjectExistsStoreError(t *testing.T) {
	stater := &fakeStater{err: errors.New("connection reset")}
	s := newMinioReportStorage(stater, "reports", zap.NewNop())

	exists, err := s.ObjectExists(context.Background(), "reports/a1.pdf")
	assert.False(t, exists)
	require.Error(t, err)
	assert.True(t, exceptions.IsRetryable(err))
}
