package shared

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/redact"
	"github.com/phrazzld/scry-decks/internal/web"
)

// Responder writes HTML responses and error fragments.
type Responder struct {
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewResponder creates a Responder. If logger is nil, a default logger will be used.
func NewResponder(renderer *web.Renderer, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{renderer: renderer, logger: logger}
}

func (rs *Responder) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), rs.logger)
}

// RespondWithHTML renders the named template with the given status code.
// A template failure is turned into a plain 500 response.
func (rs *Responder) RespondWithHTML(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	name string,
	data any,
) {
	if err := rs.renderer.Render(w, status, name, data); err != nil {
		rs.log(r).Error("failed to render template",
			slog.String("template", name),
			slog.String("error", redact.Error(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RespondWithError writes an error fragment with the given status code and message.
// The trace ID from the request context is shown alongside the message.
func (rs *Responder) RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())
	view := web.ErrorView{Status: status, Message: message, TraceID: traceID}
	if err := rs.renderer.Render(w, status, web.ErrorTemplate, view); err != nil {
		rs.log(r).Error("failed to render error fragment",
			slog.String("error", redact.Error(err)),
			slog.String("trace_id", traceID))
		http.Error(w, message, status)
	}
}

// RespondWithErrorAndLog writes an error fragment and also logs the detailed error.
// Only userMessage reaches the client; the error is redacted before logging.
//
// 5xx errors are logged at ERROR level, everything else at DEBUG level.
func (rs *Responder) RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	logAttrs := []slog.Attr{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	rs.log(r).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	rs.RespondWithError(w, r, status, userMessage)
}
