package ratelimiter

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ResourceLimiter is a fixed-window counter kept in Redis, shared by every
// instance of the service. The key expires one second after its window ends.
type ResourceLimiter struct {
	redis contracts.RedisRepository
	clock clock.Clock
	log   *zap.Logger
}

func NewResourceLimiter(redis contracts.RedisRepository, clk clock.Clock, log *zap.Logger) contracts.ResourceLimiter {
	return &ResourceLimiter{redis: redis, clock: clk, log: log}
}

// Allow counts one request of subject in group. When the quota of the current
// window is used up it reports false and the time left until the next window.
// A non-positive quota disables the limit.
func (l *ResourceLimiter) Allow(ctx context.Context, group, subject string, window time.Duration, quota int) (bool, time.Duration, error) {
	if quota <= 0 {
		return true, 0, nil
	}
	if window < time.Second {
		window = time.Minute
	}

	group = strings.ToUpper(strings.TrimSpace(group))
	subject = strings.TrimSpace(subject)
	if group == "" || subject == "" {
		return false, window, nil
	}

	now := l.clock.Now().UTC()
	windowSecs := int64(window / time.Second)
	windowID := now.Unix() / windowSecs
	key := fmt.Sprintf("%s:%s:%s:%d", constvars.RedisQuotaKeyPrefix, group, subject, windowID)

	count, err := l.redis.IncrementWithTTL(ctx, key, window+time.Second)
	if err != nil {
		l.log.Error("ResourceLimiter.Allow increment failed",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err))
		return false, 0, err
	}

	if count > quota {
		nextWindow := time.Unix((windowID+1)*windowSecs, 0).UTC()
		return false, nextWindow.Sub(now), nil
	}
	return true, 0, nil
}
