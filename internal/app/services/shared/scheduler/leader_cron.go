package scheduler

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultLeaderLockTTL = 2 * time.Minute

// LeaderCron runs Job on a cron schedule, but only on the instance holding
// the leader lock. The lock TTL is refreshed while the job runs.
type LeaderCron struct {
	Name    string
	Spec    string
	LockKey string
	LockTTL time.Duration
	Job     func(ctx context.Context) (int, error)

	log    *zap.Logger
	locker contracts.LockerService
	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewLeaderCron(log *zap.Logger, locker contracts.LockerService, name, spec, lockKey string, lockTTL time.Duration, job func(ctx context.Context) (int, error)) *LeaderCron {
	if lockTTL <= 0 {
		lockTTL = defaultLeaderLockTTL
	}
	return &LeaderCron{
		Name:    name,
		Spec:    spec,
		LockKey: lockKey,
		LockTTL: lockTTL,
		Job:     job,
		log:     log,
		locker:  locker,
	}
}

// Start schedules the job. An empty spec leaves it disabled.
func (w *LeaderCron) Start(ctx context.Context) error {
	if w.Spec == "" {
		w.log.Info("scheduler: worker disabled, no cron spec configured",
			zap.String(constvars.LoggingWorkerKey, w.Name),
		)
		return nil
	}

	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(w.Spec, func() { w.RunOnce(w.runCtx) })
	if err != nil {
		w.cancel()
		return err
	}
	c.Start()
	w.cron = c

	w.log.Info("scheduler: worker started",
		zap.String(constvars.LoggingWorkerKey, w.Name),
		zap.String(constvars.LoggingCronSpecKey, w.Spec),
	)
	return nil
}

// Stop cancels the running job and waits for it to return.
func (w *LeaderCron) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
	}
}

// RunOnce performs one leader elected run. It returns false when another
// instance holds the lock or the lock could not be taken.
func (w *LeaderCron) RunOnce(ctx context.Context) bool {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())
	requestID := utils.GetRequestID(ctx)

	acquired, token, err := w.locker.TryLock(ctx, w.LockKey, w.LockTTL)
	if err != nil {
		w.log.Warn("scheduler: leader lock attempt failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWorkerKey, w.Name),
			zap.Error(err),
		)
		return false
	}
	if !acquired {
		w.log.Info("scheduler: leader lock not acquired; another instance is running",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWorkerKey, w.Name),
		)
		return false
	}
	defer w.locker.Unlock(context.WithoutCancel(ctx), w.LockKey, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(w.LockTTL / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.locker.Refresh(refreshCtx, w.LockKey, token, w.LockTTL); err != nil {
					w.log.Warn("scheduler: failed to refresh leader lock TTL",
						zap.String(constvars.LoggingRequestIDKey, requestID),
						zap.String(constvars.LoggingWorkerKey, w.Name),
						zap.Error(err),
					)
				}
			}
		}
	}()

	start := time.Now()
	count, err := w.Job(ctx)
	if err != nil {
		w.log.Warn("scheduler: run failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWorkerKey, w.Name),
			zap.Int(constvars.LoggingCountKey, count),
			zap.Error(err),
		)
		return true
	}

	w.log.Info("scheduler: run finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWorkerKey, w.Name),
		zap.Int(constvars.LoggingCountKey, count),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	return true
}
