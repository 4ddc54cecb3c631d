package geoapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// APIError is the platform's error envelope. the platform reports
// failures as `{"error": {"code": ..., "status": ..., "message": ...}}`
// with a non-2xx http status.
type APIError struct {
	HttpStatus int
	Code       int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform error %s (http %d): %s", e.Status, e.HttpStatus, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// apiError converts a non-2xx response into an *APIError. responses
// that don't carry the envelope still produce an APIError with only the
// http status filled in.
func apiError(res *resty.Response) error {
	out := &APIError{
		HttpStatus: res.StatusCode(),
		Message:    res.Status(),
	}

	var envelope errorEnvelope
	err := json.Unmarshal(res.Body(), &envelope)
	if err == nil && envelope.Error.Status != "" {
		out.Code = envelope.Error.Code
		out.Status = envelope.Error.Status
		out.Message = envelope.Error.Message
	}
	return out
}

func statusIs(err error, status string) bool {
	var apierr *APIError
	if !errors.As(err, &apierr) {
		return false
	}
	return apierr.Status == status
}

func IsNotFound(err error) bool {
	return statusIs(err, "NOT_FOUND")
}

func IsUnauthenticated(err error) bool {
	return statusIs(err, "UNAUTHENTICATED")
}

func IsQuotaExceeded(err error) bool {
	return statusIs(err, "RESOURCE_EXHAUSTED")
}
