package middlewares

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "middleware-secret"

func newTestMiddlewares(maxRequests int) (*Middlewares, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewMiddlewares(zap.New(core), nil, &config.InternalConfig{
		App: config.App{MaxRequests: maxRequests},
		JWT: config.AppJWT{Secret: testSecret},
	}), logs
}

func signedToken(t *testing.T, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	token, err := utils.GenerateJWT(utils.JWTClaims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}, testSecret, expiresIn)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	m, logs := newTestMiddlewares(0)

	var seen *utils.JWTClaims
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetAuthClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+signedToken(t, "user-7", constvars.RolePatient, time.Hour))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "user-7", seen.UserID())
		assert.False(t, seen.IsAdmin())
	})

	t.Run("missing bearer prefix", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, signedToken(t, "user-7", constvars.RolePatient, time.Hour))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token is logged as a security event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+signedToken(t, "user-7", constvars.RolePatient, -time.Minute))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.NotZero(t, logs.FilterField(zap.String("security_event", "invalid_token")).Len())
	})
}

func TestRequireAdmin(t *testing.T) {
	m, _ := newTestMiddlewares(0)
	handler := m.Authenticate(m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", constvars.RoleAdmin, http.StatusOK},
		{"patient is forbidden", constvars.RolePatient, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set(constvars.HeaderAuthorization, "Bearer "+signedToken(t, "someone", tc.role, time.Hour))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}

	t.Run("without authenticate", func(t *testing.T) {
		rr := httptest.NewRecorder()
		m.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	m, _ := newTestMiddlewares(0)

	var requestID string
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = utils.GetRequestID(r.Context())
	}))

	t.Run("client id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-req-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "client-req-1", requestID)
		assert.Equal(t, "client-req-1", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("generated when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, requestID)
		assert.NotEqual(t, "client-req-1", requestID)
		assert.Equal(t, requestID, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	m, logs := newTestMiddlewares(0)
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/explode", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLogging_RecordsStatus(t *testing.T) {
	m, logs := newTestMiddlewares(0)
	handler := m.RequestIDMiddleware(m.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	completed := logs.FilterMessage("API request completed").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusTeapot, completed[0].ContextMap()[constvars.LoggingStatusCodeKey])
	assert.Equal(t, false, completed[0].ContextMap()[constvars.LoggingSuccessKey])
}

func TestRateLimit(t *testing.T) {
	m, _ := newTestMiddlewares(2)
	handler := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type countingLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingLimiter) Allow(ctx context.Context, group, subject string, window time.Duration, quota int) (bool, time.Duration, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.counts[group+":"+subject]++
	if l.counts[group+":"+subject] > quota {
		return false, 1500 * time.Millisecond, nil
	}
	return true, 0, nil
}

func TestUserQuota(t *testing.T) {
	m, _ := newTestMiddlewares(0)
	limiter := &countingLimiter{counts: make(map[string]int)}
	m.ResourceLimiter = limiter

	handler := m.Authenticate(m.UserQuota(constvars.QuotaGroupPayment, time.Minute, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	call := func(subject string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+signedToken(t, subject, constvars.RolePatient, time.Hour))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, call("user-1").Code)
	assert.Equal(t, http.StatusOK, call("user-1").Code)

	limited := call("user-1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get(constvars.HeaderRetryAfter))

	assert.Equal(t, http.StatusOK, call("user-2").Code)

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		limiter.err = errors.New("redis down")
		assert.Equal(t, http.StatusOK, call("user-1").Code)
	})
}
