package storage

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const minioNoSuchKeyCode = "NoSuchKey"

// objectStater is the subset of *minio.Client used to look up reports.
type objectStater interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type minioReportStorage struct {
	client     objectStater
	bucketName string
	Log        *zap.Logger
}

func NewMinioReportStorage(client *minio.Client, bucketName string, logger *zap.Logger) contracts.ReportStorage {
	return newMinioReportStorage(client, bucketName, logger)
}

func newMinioReportStorage(client objectStater, bucketName string, logger *zap.Logger) *minioReportStorage {
	return &minioReportStorage{
		client:     client,
		bucketName: bucketName,
		Log:        logger,
	}
}

func (s *minioReportStorage) BucketName() string {
	return s.bucketName
}

func (s *minioReportStorage) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	requestID := utils.GetRequestID(ctx)

	_, err := s.client.StatObject(ctx, s.bucketName, objectKey, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	if minio.ToErrorResponse(err).Code == minioNoSuchKeyCode {
		s.Log.Debug("minioReportStorage.ObjectExists object not found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketKey, s.bucketName),
			zap.String(constvars.LoggingObjectKey, objectKey),
		)
		return false, nil
	}

	s.Log.Error("minioReportStorage.ObjectExists error calling StatObject",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBucketKey, s.bucketName),
		zap.String(constvars.LoggingObjectKey, objectKey),
		zap.Error(err),
	)
	return false, exceptions.ErrMinioStatObject(err, s.bucketName)
}
