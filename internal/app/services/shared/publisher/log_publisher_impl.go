package publisher

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"

	"go.uber.org/zap"
)

type logPublisher struct {
	Log *zap.Logger
}

// NewLogPublisher returns a publisher that only logs events. It is used when
// no broker is configured.
func NewLogPublisher(logger *zap.Logger) contracts.EventPublisher {
	return &logPublisher{Log: logger}
}

func (p *logPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	p.Log.Info("logPublisher.Publish event",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingEventKey, eventType),
		zap.Any("data", data),
	)
	return nil
}
