package middlewares

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer token and stores its claims in the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := utils.GetRequestID(r.Context())

		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		claims, err := utils.ParseJWT(token, m.InternalConfig.JWT.Secret)
		if err != nil {
			utils.LogSecurityEvent(m.Log, "invalid_token", requestID, "medium",
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			)
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.SetAuthClaims(r.Context(), claims)))
	})
}

// RequireAdmin must run after Authenticate.
func (m *Middlewares) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := utils.GetAuthClaims(r.Context())
		if !ok {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingAuthClaims(nil))
			return
		}
		if !claims.IsAdmin() {
			utils.LogSecurityEvent(m.Log, "admin_route_denied", utils.GetRequestID(r.Context()), "medium",
				zap.String(constvars.LoggingUserIDKey, claims.UserID()),
				zap.String(constvars.LoggingRoleKey, claims.Role),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrRoleNotAllowed(nil, claims.Role))
			return
		}
		next.ServeHTTP(w, r)
	})
}
