package contracts

import (
	"ambica-diagnostic-service/internal/app/models"
	"context"
	"time"
)

type SlotRepository interface {
	EnsureIndexes(ctx context.Context) error
	// EnsureBucket creates the bucket if missing and never modifies an existing one.
	EnsureBucket(ctx context.Context, date, timeSlot string, capacity int, now time.Time) error
	// TryGrant atomically adds holder when capacity remains and holder is not
	// already present. It returns nil, nil when the condition did not match.
	TryGrant(ctx context.Context, key string, capacity int, holder models.SlotHolder, now time.Time) (*models.SlotBucket, error)
	// Release atomically removes the holder. It reports false when the holder was absent.
	Release(ctx context.Context, key, appointmentID string, now time.Time) (bool, error)
	FindByKey(ctx context.Context, key string) (*models.SlotBucket, error)
	FindByDate(ctx context.Context, date string) ([]models.SlotBucket, error)
	FindWithHoldersGrantedBefore(ctx context.Context, cutoff time.Time) ([]models.SlotBucket, error)
}

type SlotUsecase interface {
	TryReserve(ctx context.Context, date, timeSlot, appointmentID string) (*models.SlotGrant, error)
	Release(ctx context.Context, date, timeSlot, appointmentID string) (bool, error)
	ListAvailability(ctx context.Context, date string) ([]models.SlotAvailability, error)
	SweepOrphanGrants(ctx context.Context, olderThan time.Duration) (int, error)
}
