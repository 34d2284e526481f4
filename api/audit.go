package api

import (
	"net/http"
	"time"

	"github.com/windbackhq/windback-bff/internal/logger"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditLoginSuccess           AuditEvent = "login_success"
	AuditLoginFailure           AuditEvent = "login_failure"
	AuditRegister               AuditEvent = "register"
	AuditLogout                 AuditEvent = "logout"
	AuditOAuthCallback          AuditEvent = "oauth_callback"
	AuditPasswordResetRequested AuditEvent = "password_reset_requested"
	AuditProxyUnauthenticated   AuditEvent = "proxy_unauthenticated"
	AuditUpstreamFailure        AuditEvent = "upstream_failure"
)

// auditLogger writes security audit entries. Credentials and request bodies
// are never logged.
type auditLogger struct {
	logger  logger.Sugared
	metrics *Metrics
}

func newAuditLogger(log logger.Sugared, metrics *Metrics) *auditLogger {
	return &auditLogger{
		logger:  log.With("component", "audit"),
		metrics: metrics,
	}
}

func (al *auditLogger) log(event AuditEvent, outcome string, r *http.Request, kv ...any) {
	fields := []any{
		"event", string(event),
		"outcome", outcome,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", requestID(r.Context()),
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	}
	fields = append(fields, kv...)
	al.logger.Infow("audit", fields...)
	al.metrics.recordEvent(event, outcome)
}

// logEvent records a successful transition.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, kv ...any) {
	al.log(event, "success", r, kv...)
}

// logFailure records a refused or failed attempt.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, kv ...any) {
	al.log(event, "failure", r, append([]any{"reason", reason}, kv...)...)
}
