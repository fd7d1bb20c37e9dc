package contracts

import "context"

type ReportStorage interface {
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	BucketName() string
}
