package response

import (
	"errors"

	"hrcore/pkg/apperr"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorCode  string      `json:"error_code,omitempty"`
}

// Success wraps data in a success envelope.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps a message in an error envelope.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a classified error to its envelope and HTTP status. The
// machine-readable code lets clients tell a retryable Conflict apart from an
// Internal failure without parsing the message.
func FromError(err error) (int, Response) {
	status := apperr.HTTPStatus(err)
	resp := Response{
		Status:     "error",
		StatusCode: status,
		Error:      err.Error(),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp.ErrorCode = string(appErr.Code)
	}
	return status, resp
}
