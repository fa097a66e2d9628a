package server

import (
	"errors"
	"net/http"
	"time"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/serializer"
	"github.com/google/uuid"
)

// ErrorResponse is the JSON error envelope returned by all API endpoints.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// WriteError writes an error response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code apperrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// writeStructuredError maps a structured error to its HTTP status and writes
// the error envelope. Resolution and invocation failures are request-level:
// they never take the server down.
func writeStructuredError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	WriteError(w, r, statusForCode(code), code, err.Error(), isRetryable(code), detailsOf(err))
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvocation:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isRetryable(code apperrors.ErrorCode) bool {
	switch code {
	case apperrors.ErrCodeRateLimitExceeded, apperrors.ErrCodeTimeout,
		apperrors.ErrCodeUnavailable, apperrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

func detailsOf(err error) map[string]any {
	var se *apperrors.StructuredError
	if errors.As(err, &se) {
		return se.Context
	}
	return nil
}
