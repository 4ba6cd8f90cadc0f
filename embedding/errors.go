package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	ollama "github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// ServiceError reports a failed, timed-out or malformed upstream embedding
// call.
type ServiceError struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// NewServiceError creates a new ServiceError.
func NewServiceError(provider, op string, statusCode int, message string, err error) *ServiceError {
	return &ServiceError{Provider: provider, Op: op, StatusCode: statusCode, Message: message, Err: err}
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("embedding: %s %s: %s", e.Provider, e.Op, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error { return e.Err }

// wrapError converts a client error into a ServiceError.
func wrapError(provider, op string, err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) || errors.Is(err, ErrEmptyText) {
		return err
	}
	status := statusCode(err)
	msg := err.Error()
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return NewServiceError(provider, op, status, msg, err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var oErr ollama.StatusError
	if errors.As(err, &oErr) {
		return oErr.StatusCode
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode
	}
	return 0
}

// isRetryable determines if an error should be retried. Deadline errors are
// only reached here when the per-call timeout fired, the caller context
// being checked first.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == 0 {
		return true
	}
	switch statusCode(err) {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
