package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Edgame2/castiel/kit/platform/errors"
	"go.uber.org/zap"
)

// PlatformError is the error response body the API writes for failed calls.
type PlatformError struct {
	Error string `json:"error"`
}

// API provides a consolidated means for handling API request and response
// activity. Resource handlers embed one and route all encode/decode and
// error writing through it.
type API struct {
	logger *zap.Logger

	prettyJSON bool

	unmarshalErrFn func(err error) error
	errFn          func(ctx context.Context, err error) error
}

// APIOptFn is a functional option for the API type.
type APIOptFn func(*API)

// WithLog sets the logger.
func WithLog(logger *zap.Logger) APIOptFn {
	return func(a *API) {
		a.logger = logger
	}
}

// WithPrettyJSON sets the json encoder to marshal indent or not.
func WithPrettyJSON(pretty bool) APIOptFn {
	return func(a *API) {
		a.prettyJSON = pretty
	}
}

// WithUnmarshalErrFn sets a fn to normalize decoding errors.
func WithUnmarshalErrFn(fn func(err error) error) APIOptFn {
	return func(a *API) {
		a.unmarshalErrFn = fn
	}
}

// NewAPI creates a new API type.
func NewAPI(opts ...APIOptFn) *API {
	api := API{
		prettyJSON: true,
		unmarshalErrFn: func(err error) error {
			return &errors.Error{
				Code: errors.EInvalid,
				Msg:  "failed to decode request body",
				Err:  err,
			}
		},
	}
	for _, o := range opts {
		o(&api)
	}
	return &api
}

// DecodeJSON decodes reader with json.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if a.unmarshalErrFn != nil {
			return a.unmarshalErrFn(err)
		}
		return err
	}
	return nil
}

// Respond encodes v to the response writer with the provided status code.
// A nil v or a 204 status writes the status code alone.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if status == http.StatusNoContent || v == nil {
		w.WriteHeader(status)
		return
	}

	var (
		b   []byte
		err error
	)
	if a.prettyJSON {
		b, err = json.MarshalIndent(v, "", "\t")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		a.Err(w, r, &errors.Error{
			Code: errors.EInternal,
			Msg:  "failed to marshal response body",
			Err:  err,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil && a.logger != nil {
		a.logger.Error("failed to write response body", zap.Error(err))
	}
}

// Err writes the error to the response writer, mapping the platform error
// code to an HTTP status. Unclassified errors report as 500s.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if a.logger != nil {
		a.logger.Info("api error encountered",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err),
		)
	}

	code := errors.ErrorCode(err)
	status, ok := statusCodePlatformError[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := errors.ErrorMessage(err)
	if msg == "" {
		msg = "An internal error has occurred"
	}

	w.Header().Set(PlatformErrorCodeHeader, code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	b, _ := json.Marshal(PlatformError{Error: msg})
	_, _ = w.Write(b)
}
