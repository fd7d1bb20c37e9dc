package controllers

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

func requestTimeout(internalConfig *config.InternalConfig) time.Duration {
	if timeout := internalConfig.App.RequestTimeout(); timeout > 0 {
		return timeout
	}
	return defaultRequestTimeout
}

// requestIdentity reads the request id and the authenticated claims, writing
// the error response itself when either is missing.
func requestIdentity(log *zap.Logger, w http.ResponseWriter, r *http.Request, handler string) (string, *utils.JWTClaims, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		log.Error(handler + " requestID not found in context")
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", nil, false
	}

	claims, ok := utils.GetAuthClaims(r.Context())
	if !ok {
		log.Error(handler+" auth claims not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID))
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingAuthClaims(nil))
		return "", nil, false
	}
	return requestID, claims, true
}

// writeUsecaseError maps a bare context deadline to a timeout response and
// renders everything else as is.
func writeUsecaseError(log *zap.Logger, w http.ResponseWriter, err error) {
	var customErr *exceptions.CustomError
	if !errors.As(err, &customErr) && errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(log, w, err)
}
