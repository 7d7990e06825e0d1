// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and writes the
// matching HTTP error response. Handlers hold one and call it instead of
// pairing h.Log.Error with http.Error by hand.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger (Nop when nil).
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error, extra []zap.Field) []zap.Field {
	fs := make([]zap.Field, 0, len(extra)+4)
	fs = append(fs,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	if id := middleware.GetReqID(r.Context()); id != "" {
		fs = append(fs, zap.String("request_id", id))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return append(fs, extra...)
}

// LogServerError logs msg at error level and responds 500 with a generic
// French message. The underlying error is never shown to the user.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	e.log.Error(msg, e.fields(r, err, fields)...)
	http.Error(w, MsgServerError, http.StatusInternalServerError)
}

// LogBadRequest logs at warn level and responds 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, userMsg string, err error, fields ...zap.Field) {
	e.log.Warn("bad request: "+userMsg, e.fields(r, err, fields)...)
	http.Error(w, userMsg, http.StatusBadRequest)
}

// Log records a failure without writing a response, for handlers that
// recover by rendering a degraded page.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, fields ...zap.Field) {
	e.log.Error(msg, e.fields(r, err, fields)...)
}
