package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

const defaultMaxRequestsPerSecond = 100

// RateLimit limits requests per client IP to App.MaxRequests per second.
func (m *Middlewares) RateLimit() func(next http.Handler) http.Handler {
	maxRequests := m.InternalConfig.App.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequestsPerSecond
	}
	return httprate.LimitByIP(maxRequests, time.Second)
}
