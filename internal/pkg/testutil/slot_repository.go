package testutil

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"sort"
	"sync"
	"time"
)

type MemorySlotRepository struct {
	Faults

	mu      sync.Mutex
	buckets map[string]*models.SlotBucket
}

func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{buckets: make(map[string]*models.SlotBucket)}
}

func (r *MemorySlotRepository) EnsureIndexes(ctx context.Context) error {
	return r.take("EnsureIndexes")
}

func (r *MemorySlotRepository) EnsureBucket(ctx context.Context, date, timeSlot string, capacity int, now time.Time) error {
	if err := r.take("EnsureBucket"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := utils.BuildSlotKey(date, timeSlot)
	if _, ok := r.buckets[key]; ok {
		return nil
	}
	bucket := &models.SlotBucket{
		ID:       key,
		Date:     date,
		TimeSlot: timeSlot,
		Capacity: capacity,
		Holders:  []models.SlotHolder{},
	}
	bucket.SetCreatedAtUpdatedAt(now)
	r.buckets[key] = bucket
	return nil
}

func (r *MemorySlotRepository) TryGrant(ctx context.Context, key string, capacity int, holder models.SlotHolder, now time.Time) (*models.SlotBucket, error) {
	if err := r.take("TryGrant"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok || bucket.ReservedCount >= capacity {
		return nil, nil
	}
	if _, held := bucket.HolderOf(holder.AppointmentID); held {
		return nil, nil
	}
	bucket.ReservedCount++
	bucket.Holders = append(bucket.Holders, holder)
	bucket.SetUpdatedAt(now)
	return cloneBucket(bucket), nil
}

func (r *MemorySlotRepository) Release(ctx context.Context, key, appointmentID string, now time.Time) (bool, error) {
	if err := r.take("Release"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok || bucket.ReservedCount <= 0 {
		return false, nil
	}
	for i, holder := range bucket.Holders {
		if holder.AppointmentID == appointmentID {
			bucket.Holders = append(bucket.Holders[:i:i], bucket.Holders[i+1:]...)
			bucket.ReservedCount--
			bucket.SetUpdatedAt(now)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemorySlotRepository) FindByKey(ctx context.Context, key string) (*models.SlotBucket, error) {
	if err := r.take("FindByKey"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok {
		return nil, nil
	}
	return cloneBucket(bucket), nil
}

func (r *MemorySlotRepository) FindByDate(ctx context.Context, date string) ([]models.SlotBucket, error) {
	if err := r.take("FindByDate"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.SlotBucket
	for _, bucket := range r.buckets {
		if bucket.Date == date {
			out = append(out, *cloneBucket(bucket))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out, nil
}

func (r *MemorySlotRepository) FindWithHoldersGrantedBefore(ctx context.Context, cutoff time.Time) ([]models.SlotBucket, error) {
	if err := r.take("FindWithHoldersGrantedBefore"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.SlotBucket
	for _, bucket := range r.buckets {
		for _, holder := range bucket.Holders {
			if holder.GrantedAt.Before(cutoff) {
				out = append(out, *cloneBucket(bucket))
				break
			}
		}
	}
	return out, nil
}

// Bucket returns a snapshot of the stored bucket, or nil.
func (r *MemorySlotRepository) Bucket(date, timeSlot string) *models.SlotBucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.buckets[utils.BuildSlotKey(date, timeSlot)]
	if !ok {
		return nil
	}
	return cloneBucket(bucket)
}

func cloneBucket(bucket *models.SlotBucket) *models.SlotBucket {
	out := *bucket
	out.Holders = append([]models.SlotHolder{}, bucket.Holders...)
	return &out
}
