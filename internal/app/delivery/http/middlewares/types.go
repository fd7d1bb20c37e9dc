package middlewares

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log             *zap.Logger
	ResourceLimiter contracts.ResourceLimiter
	InternalConfig  *config.InternalConfig
}

func NewMiddlewares(logger *zap.Logger, resourceLimiter contracts.ResourceLimiter, internalConfig *config.InternalConfig) *Middlewares {
	return &Middlewares{
		Log:             logger,
		ResourceLimiter: resourceLimiter,
		InternalConfig:  internalConfig,
	}
}
