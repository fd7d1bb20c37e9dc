package payments

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/services/shared/scheduler"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"

	"go.uber.org/zap"
)

// NewWorker returns the cron job that fails pending orders past the payment window.
func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, paymentUsecase contracts.PaymentUsecase) *scheduler.LeaderCron {
	window := cfg.App.PaymentExpiry()
	return scheduler.NewLeaderCron(
		log,
		lockerSvc,
		"payment.expiry",
		cfg.Worker.PaymentExpiryCronSpec,
		constvars.WorkerPaymentExpiryLeaderLockKey,
		cfg.Worker.LeaderLockTTL(),
		func(ctx context.Context) (int, error) {
			return paymentUsecase.ExpireStale(ctx, window)
		},
	)
}
