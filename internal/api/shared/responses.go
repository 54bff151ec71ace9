package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"` // Not serialized to JSON, used for logging
	TraceID string `json:"trace_id,omitempty"`
}

// ValidationErrorResponse is the body of a 422 response. Errors maps each
// invalid field to its messages.
type ValidationErrorResponse struct {
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
	TraceID string              `json:"trace_id,omitempty"`
}

// RedirectResponse is the body sent along with a redirect.
type RedirectResponse struct {
	Location string `json:"location"`
	Notice   string `json:"notice,omitempty"`
	Alert    string `json:"alert,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to
// WARN level instead of the default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithRedirect answers with 302 Found and a JSON body repeating the
// location and any flash message.
func RespondWithRedirect(w http.ResponseWriter, r *http.Request, body RedirectResponse) {
	w.Header().Set("Location", body.Location)
	RespondWithJSON(w, r, http.StatusFound, body)
}

// RespondWithError writes a JSON error response carrying the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	logger.FromContext(r.Context()).Debug("sending error response",
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, Code: status, TraceID: traceID})
}

// NewValidationErrorResponse builds a 422 body for the given field errors.
func NewValidationErrorResponse(r *http.Request, message string, fields map[string][]string) ValidationErrorResponse {
	if fields == nil {
		fields = map[string][]string{}
	}
	return ValidationErrorResponse{
		Error:   message,
		Errors:  fields,
		TraceID: GetTraceID(r.Context()),
	}
}

// RespondWithErrorAndLog writes a JSON error response with only userMessage
// exposed, and logs the redacted err. 5xx responses log at ERROR, 429 at
// WARN, and other statuses at DEBUG unless WithElevatedLogLevel is given.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	case o.elevateLogLevel && status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: userMessage, Code: status, TraceID: traceID})
}
