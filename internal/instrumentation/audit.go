package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/wbxmeet/internal/logging"
)

// Change describes a meeting change made on behalf of a user.
type Change struct {
	// Operation is the remote operation, CreateMeeting or DelMeeting.
	Operation string
	// Source is where the change originated ("cli", "mcp").
	Source     string
	Site       string
	WebExID    string
	MeetingKey string
	Success    bool
	Error      string
	Duration   time.Duration
	TraceID    string
}

// AuditLogger writes one record per meeting change to a dedicated slog
// logger, so operators can route the audit stream separately.
type AuditLogger struct {
	logger *slog.Logger
	config AuditConfig
}

// NewAuditLogger returns an AuditLogger. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger.With(slog.String("log_type", "audit")),
		config: config,
	}
}

// LogChange writes c. The trace ID is filled from ctx when unset. A nil
// receiver is allowed and does nothing.
func (a *AuditLogger) LogChange(ctx context.Context, c Change) {
	if a == nil || !a.config.Enabled {
		return
	}
	if c.TraceID == "" {
		c.TraceID = GetTraceID(ctx)
	}

	user := logging.AnonymizeUser(c.WebExID)
	if a.config.IncludePII {
		user = c.WebExID
	}

	attrs := []slog.Attr{
		slog.String("operation", c.Operation),
		slog.String("source", c.Source),
		slog.String("site", c.Site),
		slog.String("user", user),
		slog.Bool("success", c.Success),
		slog.Duration("duration", c.Duration),
	}
	if c.MeetingKey != "" {
		attrs = append(attrs, slog.String("meeting_key", c.MeetingKey))
	}
	if c.Error != "" {
		attrs = append(attrs, slog.String("error", c.Error))
	}
	if c.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", c.TraceID))
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "meeting change", attrs...)
}
