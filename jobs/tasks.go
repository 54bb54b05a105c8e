package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskEpochBackfill stamps a key epoch for accounts that never had one.
	TaskEpochBackfill = "auth:epoch_backfill"
	// TaskSessionSweep removes expired rows from the sessions table.
	TaskSessionSweep = "session:sweep"
	// TaskRatelimitCleanup evicts stray rate-limit counters without a TTL.
	TaskRatelimitCleanup = "ratelimit:cleanup"
)

// EpochBackfillPayload bounds one backfill run.
type EpochBackfillPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewEpochBackfillTask constructs an Asynq task for the epoch backfill.
func NewEpochBackfillTask(batchSize int) (*asynq.Task, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	body, err := json.Marshal(EpochBackfillPayload{BatchSize: batchSize})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEpochBackfill, body, asynq.Queue(QueueDefault)), nil
}

// EpochBackfillJob stamps last_key_generated_at for accounts created before
// key issuance recorded an epoch. Stamped accounts keep working with the
// session path; the stamp only matters once they mint their first API key.
type EpochBackfillJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewEpochBackfillJob constructs the job handler.
func NewEpochBackfillJob(pool *pgxpool.Pool, logger *slog.Logger) *EpochBackfillJob {
	return &EpochBackfillJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one backfill batch.
func (j *EpochBackfillJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload EpochBackfillPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = 500
	}

	stamp := j.clock().Truncate(time.Millisecond)
	tag, err := j.Pool.Exec(ctx, `
		UPDATE users SET last_key_generated_at = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM users WHERE last_key_generated_at IS NULL LIMIT $2
		)`, stamp, payload.BatchSize)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		j.Logger.Info("epoch backfill", slog.Int64("stamped", tag.RowsAffected()))
	}
	return nil
}

// SessionSweepPayload carries scheduling metadata.
type SessionSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionSweepTask constructs an Asynq task for the session sweep.
func NewSessionSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, body, asynq.Queue(QueueDefault)), nil
}

// SessionSweepJob deletes sessions whose expiry has passed. Redis entries
// expire on their own; this keeps the relational audit copy bounded.
type SessionSweepJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewSessionSweepJob constructs the job handler.
func NewSessionSweepJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{Pool: pool, Logger: logger}
}

// Handle executes the sweep.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tag, err := j.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		j.Logger.Info("session sweep", slog.Int64("deleted", tag.RowsAffected()))
	}
	return nil
}

// RatelimitCleanupPayload bounds one cleanup scan.
type RatelimitCleanupPayload struct {
	ScanCount int64 `json:"scan_count"`
}

// NewRatelimitCleanupTask constructs an Asynq task for the counter cleanup.
func NewRatelimitCleanupTask(scanCount int64) (*asynq.Task, error) {
	if scanCount <= 0 {
		scanCount = 1000
	}
	body, err := json.Marshal(RatelimitCleanupPayload{ScanCount: scanCount})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatelimitCleanup, body, asynq.Queue(QueueDefault)), nil
}

// RatelimitCleanupJob scans for rate-limit counters that lost their TTL,
// which can happen when INCR succeeds but the follow-up EXPIRE does not.
type RatelimitCleanupJob struct {
	Client *redis.Client
	Logger *slog.Logger
}

// NewRatelimitCleanupJob constructs the job handler.
func NewRatelimitCleanupJob(client *redis.Client, logger *slog.Logger) *RatelimitCleanupJob {
	return &RatelimitCleanupJob{Client: client, Logger: logger}
}

// Handle executes one cleanup scan.
func (j *RatelimitCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RatelimitCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ScanCount <= 0 {
		payload.ScanCount = 1000
	}

	var removed int
	iter := j.Client.Scan(ctx, 0, "ratelimit:*", payload.ScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := j.Client.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		if ttl == -1 {
			if err := j.Client.Del(ctx, key).Err(); err != nil {
				return err
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if removed > 0 {
		j.Logger.Info("ratelimit cleanup", slog.Int("removed", removed))
	}
	return nil
}
