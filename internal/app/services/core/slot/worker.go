package slot

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/services/shared/scheduler"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"

	"go.uber.org/zap"
)

// NewWorker returns the cron job that releases orphaned slot grants.
func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, slotUsecase contracts.SlotUsecase) *scheduler.LeaderCron {
	gracePeriod := cfg.Worker.SlotGrantGracePeriod()
	return scheduler.NewLeaderCron(
		log,
		lockerSvc,
		"slot.sweeper",
		cfg.Worker.SlotSweeperCronSpec,
		constvars.WorkerSlotSweeperLeaderLockKey,
		cfg.Worker.LeaderLockTTL(),
		func(ctx context.Context) (int, error) {
			return slotUsecase.SweepOrphanGrants(ctx, gracePeriod)
		},
	)
}
