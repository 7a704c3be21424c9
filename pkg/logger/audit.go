package logger

import (
	"context"
	"log/slog"
	"time"
)

// Auth audit event types
const (
	EventLoginSuccess   = "login_success"
	EventLoginFailed    = "login_failed"
	EventLoginBlocked   = "login_blocked"
	EventLockout        = "account_locked_out"
	EventUserRegistered = "user_registered"
)

// AuditEvent is one security-relevant authentication outcome
type AuditEvent struct {
	EventType        string
	Username         string
	IPAddress        string
	Entrypoint       string // request path that produced the event
	Success          bool
	FailureReason    string
	RemainingSeconds int
}

// AuditLogger writes audit records through slog. Outside development
// usernames are masked.
type AuditLogger struct {
	logger *slog.Logger
	env    string
}

func NewAuditLogger(logger *slog.Logger, env string) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		env:    env,
	}
}

// LogAuthAttempt logs a login, token, or lockout event
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	if al == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Username != "" {
		attrs = append(attrs, al.usernameAttr(event.Username))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Entrypoint != "" {
		attrs = append(attrs, slog.String("entrypoint", event.Entrypoint))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	if event.RemainingSeconds > 0 {
		attrs = append(attrs, slog.Int("remaining_seconds", event.RemainingSeconds))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogAccountAction logs non-auth account events such as registration
func (al *AuditLogger) LogAccountAction(ctx context.Context, eventType, username, ipAddress string) {
	if al == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		al.usernameAttr(username),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}

	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

func (al *AuditLogger) usernameAttr(username string) slog.Attr {
	if al.env == "development" {
		return slog.String("username", username)
	}
	return slog.String("username", SanitizedUsername(username))
}
