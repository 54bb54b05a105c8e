package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Auth failure kinds recorded for audit. The HTTP response is identical
// for all three; only the audit trail tells them apart.
const (
	AuthFailureMalformed     = "token_malformed"
	AuthFailureUserMissing   = "token_user_missing"
	AuthFailureEpochMismatch = "token_epoch_mismatch"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" {
		return errors.New("audit log requires action/entity")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at any
	if !log.At.IsZero() {
		at = log.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}

// Recorder is the subset used by middleware; nil-safe via NoopAuditor.
type Recorder interface {
	Record(ctx context.Context, log AuditLog) error
}

// NoopAuditor discards audit records. Used in tests.
type NoopAuditor struct{}

// Record implements Recorder.
func (NoopAuditor) Record(context.Context, AuditLog) error { return nil }
