package slot

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/testutil"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDate = "2026-10-20"

type slotFixture struct {
	usecase         contracts.SlotUsecase
	slotRepo        *testutil.MemorySlotRepository
	appointmentRepo *testutil.MemoryAppointmentRepository
	clock           *clock.MockClock
}

func newSlotFixture(t *testing.T) *slotFixture {
	t.Helper()
	cfg := &config.InternalConfig{
		Slot: config.AppSlot{Capacity: 3, StartTime: "06:00", EndTime: "08:30", IntervalInMinutes: 15},
	}
	f := &slotFixture{
		slotRepo:        testutil.NewMemorySlotRepository(),
		appointmentRepo: testutil.NewMemoryAppointmentRepository(),
		clock:           clock.NewMockClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)),
	}
	uc, err := NewSlotUsecase(f.slotRepo, f.appointmentRepo, cfg, f.clock, zap.NewNop())
	require.NoError(t, err)
	f.usecase = uc
	return f
}

func TestSlotUsecase_TryReserveCapacityUnderConcurrency(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		granted   int
		exhausted int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.usecase.TryReserve(ctx, testDate, "06:00", fmt.Sprintf("appt-%d", i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case exceptions.HasCode(err, constvars.ErrCodeCapacityExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, granted)
	assert.Equal(t, callers-3, exhausted)

	bucket := f.slotRepo.Bucket(testDate, "06:00")
	require.NotNil(t, bucket)
	assert.Equal(t, 3, bucket.ReservedCount)
	assert.Len(t, bucket.Holders, bucket.ReservedCount)
}

func TestSlotUsecase_CapacityThreeScenario(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		grant, err := f.usecase.TryReserve(ctx, testDate, "06:00", id)
		require.NoError(t, err)
		assert.Equal(t, id, grant.AppointmentID)
		assert.Equal(t, testDate+"|06:00", grant.Key())
	}

	_, err := f.usecase.TryReserve(ctx, testDate, "06:00", "d")
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeCapacityExhausted))

	availability, err := f.usecase.ListAvailability(ctx, testDate)
	require.NoError(t, err)
	require.Len(t, availability, 10)
	assert.Equal(t, models.SlotAvailability{TimeSlot: "06:00", IsAvailable: false, Remaining: 0, Capacity: 3}, availability[0])
	for _, slot := range availability[1:] {
		assert.True(t, slot.IsAvailable)
		assert.Equal(t, 3, slot.Remaining)
	}
}

func TestSlotUsecase_TryReserveIsIdempotentPerAppointment(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	first, err := f.usecase.TryReserve(ctx, testDate, "07:00", "appt-1")
	require.NoError(t, err)

	f.clock.Add(time.Minute)
	second, err := f.usecase.TryReserve(ctx, testDate, "07:00", "appt-1")
	require.NoError(t, err)

	assert.Equal(t, first.GrantedAt, second.GrantedAt)
	assert.Equal(t, 1, f.slotRepo.Bucket(testDate, "07:00").ReservedCount)
}

func TestSlotUsecase_ReleaseThenReserveReclaims(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := f.usecase.TryReserve(ctx, testDate, "06:15", id)
		require.NoError(t, err)
	}

	released, err := f.usecase.Release(ctx, testDate, "06:15", "b")
	require.NoError(t, err)
	assert.True(t, released)

	_, err = f.usecase.TryReserve(ctx, testDate, "06:15", "d")
	require.NoError(t, err)
	assert.Equal(t, 3, f.slotRepo.Bucket(testDate, "06:15").ReservedCount)
}

func TestSlotUsecase_ReleaseTwiceReleasesOnce(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	_, err := f.usecase.TryReserve(ctx, testDate, "06:30", "a")
	require.NoError(t, err)

	released, err := f.usecase.Release(ctx, testDate, "06:30", "a")
	require.NoError(t, err)
	assert.True(t, released)

	released, err = f.usecase.Release(ctx, testDate, "06:30", "a")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = f.usecase.Release(ctx, testDate, "09:00", "a")
	require.NoError(t, err)
	assert.False(t, released)

	assert.Equal(t, 0, f.slotRepo.Bucket(testDate, "06:30").ReservedCount)
}

func TestSlotUsecase_TryReserveRejectsInvalidInput(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	_, err := f.usecase.TryReserve(ctx, testDate, "09:00", "a")
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidInput))

	_, err = f.usecase.TryReserve(ctx, "20-10-2026", "06:00", "a")
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidInput))

	_, err = f.usecase.ListAvailability(ctx, "tomorrow")
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidInput))

	assert.Nil(t, f.slotRepo.Bucket(testDate, "09:00"))
}

func TestSlotUsecase_StoreErrorIsNeitherGrantNorDenial(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	f.slotRepo.Fail("TryGrant", exceptions.ErrMongoDBUpdateDocument(errors.New("no primary")), 1)

	_, err := f.usecase.TryReserve(ctx, testDate, "06:00", "a")
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeTransientStoreError))
	assert.False(t, exceptions.HasCode(err, constvars.ErrCodeCapacityExhausted))
	assert.True(t, exceptions.IsRetryable(err))

	grant, err := f.usecase.TryReserve(ctx, testDate, "06:00", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", grant.AppointmentID)
}

func TestSlotUsecase_SweepOrphanGrants(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	f.appointmentRepo.Put(models.Appointment{ID: "live", Status: constvars.AppointmentStatusPending, Date: testDate, TimeSlot: "07:30"})
	f.appointmentRepo.Put(models.Appointment{ID: "cancelled", Status: constvars.AppointmentStatusCancelled, Date: testDate, TimeSlot: "07:30"})

	for _, id := range []string{"live", "cancelled", "ghost"} {
		_, err := f.usecase.TryReserve(ctx, testDate, "07:30", id)
		require.NoError(t, err)
	}

	f.clock.Add(30 * time.Minute)
	_, err := f.usecase.TryReserve(ctx, testDate, "07:45", "fresh-ghost")
	require.NoError(t, err)

	released, err := f.usecase.SweepOrphanGrants(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	bucket := f.slotRepo.Bucket(testDate, "07:30")
	assert.Equal(t, 1, bucket.ReservedCount)
	_, held := bucket.HolderOf("live")
	assert.True(t, held)

	assert.Equal(t, 1, f.slotRepo.Bucket(testDate, "07:45").ReservedCount)
	assert.NotNil(t, f.appointmentRepo.Get("cancelled").SlotReleasedAt)

	released, err = f.usecase.SweepOrphanGrants(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}
