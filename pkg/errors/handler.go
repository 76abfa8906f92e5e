// Package errors defines the application error model and its HTTP
// rendering.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// traceIDHeader is read when the request carries no active span.
const traceIDHeader = "X-Trace-ID"

// ErrorResponse is the JSON body of every error reply. RequestID and TraceID
// let a client quote the exact request when reporting a problem.
type ErrorResponse struct {
	Error     bool           `json:"error"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
}

// ErrorHandler renders errors as ErrorResponse bodies and logs them.
//
// AppErrors keep their type, status, code and details. Any other error is
// reported as a generic 500 so internal messages do not reach clients. In
// debug mode the raw message and captured stack traces are included.
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates an error handler. A nil logger discards logs.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle writes the response for err. A nil err writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID, traceID := correlation(r)

	appErr := GetAppError(err)
	if appErr == nil {
		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.String("trace_id", traceID),
			zap.Int("status", h.defaultStatus),
		)

		message := "An internal error occurred"
		if h.debug {
			message = err.Error()
		}
		h.sendJSON(w, h.defaultStatus, ErrorResponse{
			Error:     true,
			Type:      string(ErrorTypeInternal),
			Message:   message,
			RequestID: requestID,
			TraceID:   traceID,
		})
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = h.defaultStatus
	}
	h.logError(r, appErr, status)

	h.sendJSON(w, status, ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Code:      appErr.Code,
		Details:   h.responseDetails(appErr),
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// responseDetails returns the details to render for err. The AppError's own
// map is never modified; a copy is made when the stack trace is added.
func (h *ErrorHandler) responseDetails(err *AppError) map[string]any {
	if !h.debug || err.StackTrace == "" {
		return err.Details
	}
	details := make(map[string]any, len(err.Details)+1)
	for k, v := range err.Details {
		details[k] = v
	}
	details["stack_trace"] = err.StackTrace
	return details
}

// HandleStatus writes an error for a bare status code, as used by the
// router's not-found and method-not-allowed handlers.
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID, traceID := correlation(r)
	response := ErrorResponse{
		Error:     true,
		Type:      statusToErrorType(status),
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	}

	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)

	h.sendJSON(w, status, response)
}

// Middleware recovers panics in downstream handlers and answers them with a
// 500. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// correlation returns the request id and the trace id of r. The active
// span wins over an inbound X-Trace-ID header.
func correlation(r *http.Request) (requestID, traceID string) {
	requestID = r.Header.Get(RequestIDHeader)
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		return requestID, sc.TraceID().String()
	}
	return requestID, r.Header.Get(traceIDHeader)
}

// logError logs client errors at warn and server errors at error.
func (h *ErrorHandler) logError(r *http.Request, err *AppError, status int) {
	requestID, traceID := correlation(r)
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID),
		zap.String("trace_id", traceID),
	}

	if err.Code != "" {
		fields = append(fields, zap.String("error_code", err.Code))
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}
	if err.Details != nil {
		fields = append(fields, zap.Any("details", err.Details))
	}

	switch {
	case status >= 500:
		h.logger.Error(err.Message, fields...)
	case status >= 400:
		h.logger.Warn(err.Message, fields...)
	default:
		h.logger.Info(err.Message, fields...)
	}
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response",
			zap.Error(err),
			zap.Any("data", data),
		)
	}
}

// statusToErrorType maps a bare status onto the closest ErrorType.
func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(ErrorTypeValidation)
	case http.StatusNotFound:
		return string(ErrorTypeNotFound)
	case http.StatusRequestEntityTooLarge:
		return string(ErrorTypeTooLarge)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return string(ErrorTypeTimeout)
	case http.StatusServiceUnavailable:
		return string(ErrorTypeUnavailable)
	case http.StatusBadGateway:
		return string(ErrorTypeExternal)
	default:
		return string(ErrorTypeInternal)
	}
}
