package server

import (
	"errors"
	"net/http"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// Sentinel errors for session and server conditions.
var (
	// ErrSessionClosed is returned when a frame is handled on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrMaxSessionsReached is returned when Config.MaxSessions live
	// sessions are open.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")
)

// ErrorResponse is the JSON body of every failed request and the payload
// of error frames.
type ErrorResponse struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// errorResponse converts err into a response body and status code.
// Structured errors keep their code; anything else is an internal error
// whose message is not exposed.
func errorResponse(err error) (ErrorResponse, int) {
	var verr *verrors.Error
	if !errors.As(err, &verr) {
		return ErrorResponse{Message: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError
	}
	resp := ErrorResponse{
		Code:       verr.Code,
		Message:    verr.Message,
		Detail:     verr.Detail,
		Suggestion: verr.Suggestion,
	}
	return resp, statusFor(verr)
}

func statusFor(err *verrors.Error) int {
	switch err.Code {
	case "V020":
		return http.StatusNotFound
	case "V021":
		return http.StatusBadRequest
	case "V012":
		return http.StatusUnprocessableEntity
	}
	switch err.Category {
	case verrors.CategoryRuleSet, verrors.CategoryConfig:
		return http.StatusInternalServerError
	case verrors.CategoryProtocol:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
