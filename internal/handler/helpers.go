package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleDomainError maps typed domain errors to HTTP responses. Remote
// failures keep the platform's status below 500; upstream 5xx collapse to
// 502 so the browser can tell a platform outage from a local bug.
func handleDomainError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var unauthorized *domain.ErrUnauthorized
	var validation *domain.ErrValidation
	var insufficientFunds *domain.ErrInsufficientFunds
	var limitExceeded *domain.ErrLimitExceeded
	var withdrawalDay *domain.ErrWithdrawalDay
	var remote *domain.ErrRemote
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized",
			zap.String("namespace", unauthorized.Namespace),
		)
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficientFunds):
		logger.Debug("insufficient funds",
			zap.Int64("available", insufficientFunds.Available),
			zap.Int64("required", insufficientFunds.Required),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &limitExceeded):
		logger.Debug("limit exceeded", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &withdrawalDay):
		logger.Debug("withdrawal day closed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &remote):
		status := remote.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		logger.Warn("platform error",
			zap.Int("status", remote.Status),
			zap.String("message", remote.Message),
		)
		writeError(w, status, remote.Message)
	case errors.As(err, &external), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Error("platform unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "platform unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
