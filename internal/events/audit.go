package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/platform/logger"
)

// AuditLogHandler writes every event to a logger at info level. The
// request-scoped logger in ctx is preferred, so entries carry the trace ID.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler. If logger is nil, a
// default logger will be used.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger.With("component", "audit")}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *DeckEvent) error {
	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("deck_id", event.DeckID),
		slog.Time("event_time", event.CreatedAt),
	}
	if event.CardID != nil {
		attrs = append(attrs, slog.Int64("card_id", *event.CardID))
	}

	logger.FromContextOrDefault(ctx, h.logger).Info("audit event", attrs...)
	return nil
}
