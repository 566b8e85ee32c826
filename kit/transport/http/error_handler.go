package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

// PlatformErrorCodeHeader shows the error code of a platform error.
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// ErrorHandler is the error handler in http package.
type ErrorHandler int

// HandleHTTPError encodes err with the appropriate status code and format,
// sets the X-Platform-Error-Code header on the response and sets the
// response status to the corresponding status code.
func (h ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	code := errors.ErrorCode(err)
	httpCode, ok := statusCodePlatformError[code]
	if !ok {
		httpCode = http.StatusInternalServerError
	}
	w.Header().Set(PlatformErrorCodeHeader, code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpCode)

	var e struct {
		Error string `json:"error"`
	}
	if pe, ok := err.(*errors.Error); ok {
		e.Error = pe.Error()
	} else {
		e.Error = "An internal error has occurred"
	}
	b, _ := json.Marshal(e)
	_, _ = w.Write(b)
}

// StatusCode maps an error code to its HTTP status. Unclassified errors
// report as internal server errors.
func StatusCode(err error) int {
	httpCode, ok := statusCodePlatformError[errors.ErrorCode(err)]
	if !ok {
		return http.StatusInternalServerError
	}
	return httpCode
}

// statusCodePlatformError converts platform error codes to HTTP status codes.
var statusCodePlatformError = map[string]int{
	errors.EInternal:            http.StatusInternalServerError,
	errors.ENotImplemented:      http.StatusNotImplemented,
	errors.EInvalid:             http.StatusBadRequest,
	errors.EUnprocessableEntity: http.StatusUnprocessableEntity,
	errors.EEmptyValue:          http.StatusBadRequest,
	errors.EConflict:            http.StatusUnprocessableEntity,
	errors.ENotFound:            http.StatusNotFound,
	errors.EUnavailable:         http.StatusServiceUnavailable,
	errors.EForbidden:           http.StatusForbidden,
	errors.ETooManyRequests:     http.StatusTooManyRequests,
	errors.EUnauthorized:        http.StatusUnauthorized,
	errors.EMethodNotAllowed:    http.StatusMethodNotAllowed,
	errors.ETooLarge:            http.StatusRequestEntityTooLarge,
}
