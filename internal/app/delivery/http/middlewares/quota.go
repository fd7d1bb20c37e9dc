package middlewares

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// UserQuota caps how often one authenticated user may call the wrapped routes
// across all instances. It must run after Authenticate. A limiter failure lets
// the request through.
func (m *Middlewares) UserQuota(group string, window time.Duration, quota int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.ResourceLimiter == nil || quota <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := utils.GetAuthClaims(r.Context())
			if !ok {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingAuthClaims(nil))
				return
			}

			allowed, retryAfter, err := m.ResourceLimiter.Allow(r.Context(), group, claims.UserID(), window, quota)
			if err != nil {
				m.Log.Warn("UserQuota limiter unavailable, allowing request",
					zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
					zap.String(constvars.LoggingUserIDKey, claims.UserID()),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				utils.LogSecurityEvent(m.Log, "quota_exceeded", utils.GetRequestID(r.Context()), "low",
					zap.String(constvars.LoggingUserIDKey, claims.UserID()),
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				)
				w.Header().Set(constvars.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrTooManyRequests(nil, group, claims.UserID()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
