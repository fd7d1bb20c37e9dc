//go:build integration

package slot

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/services/core/appointments"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/testutil"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSlotUsecase_MongoCapacityUnderContention(t *testing.T) {
	client, dbName := testutil.StartMongo(t)
	ctx := context.Background()

	slotRepo := NewSlotMongoRepository(client, dbName)
	appointmentRepo := appointments.NewAppointmentMongoRepository(client, dbName)
	require.NoError(t, slotRepo.EnsureIndexes(ctx))
	require.NoError(t, appointmentRepo.EnsureIndexes(ctx))

	cfg := &config.InternalConfig{
		Slot: config.AppSlot{Capacity: 3, StartTime: "06:00", EndTime: "08:30", IntervalInMinutes: 15},
	}
	usecase, err := NewSlotUsecase(slotRepo, appointmentRepo, cfg, clock.NewMockClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)), zap.NewNop())
	require.NoError(t, err)

	const contenders = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		granted   []string
		exhausted int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			appointmentID := fmt.Sprintf("appt-%02d", i)
			grant, err := usecase.TryReserve(ctx, testDate, "06:00", appointmentID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted = append(granted, grant.AppointmentID)
			case exceptions.HasCode(err, constvars.ErrCodeCapacityExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error for %s: %v", appointmentID, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, granted, 3)
	assert.Equal(t, contenders-3, exhausted)

	bucket, err := slotRepo.FindByKey(ctx, utils.BuildSlotKey(testDate, "06:00"))
	require.NoError(t, err)
	require.NotNil(t, bucket)
	assert.Equal(t, 3, bucket.ReservedCount)
	assert.Len(t, bucket.Holders, 3)

	released, err := usecase.Release(ctx, testDate, "06:00", granted[0])
	require.NoError(t, err)
	assert.True(t, released)

	released, err = usecase.Release(ctx, testDate, "06:00", granted[0])
	require.NoError(t, err)
	assert.False(t, released)

	_, err = usecase.TryReserve(ctx, testDate, "06:00", "appt-late")
	require.NoError(t, err)

	availability, err := usecase.ListAvailability(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, availability[0].Remaining)
	assert.Equal(t, 3, availability[1].Remaining)
}
