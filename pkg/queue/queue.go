// pkg/queue/queue.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/exam-solver/config"
)

// TaskType 定义任务类型
const (
	TaskTypeArtifactPurge = "artifact:purge"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// ErrNotFound is returned when no progress snapshot exists for a job.
var ErrNotFound = errors.New("progress not found")

// PurgePayload asks a worker to delete one stored artifact.
type PurgePayload struct {
	URL         string    `json:"url"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ProgressSnapshot is the last known state of a solve job.
type ProgressSnapshot struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	PaperID   string    `json:"paperId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Queue schedules background purges through asynq and keeps job progress
// in Redis.
type Queue struct {
	client      *asynq.Client
	redis       *redis.Client
	progressTTL time.Duration
}

func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewQueue connects to Redis and fails fast when it is unreachable.
func NewQueue(ctx context.Context, cfg config.RedisConfig) (*Queue, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.ProgressTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Queue{
		client:      asynq.NewClient(RedisClientOpt(cfg)),
		redis:       redisClient,
		progressTTL: ttl,
	}, nil
}

// NewPurgeTask builds the asynq task for deleting url.
func NewPurgeTask(url string) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgePayload{URL: url, RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return asynq.NewTask(TaskTypeArtifactPurge, payload,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.ProcessIn(30*time.Second),
	), nil
}

// ParsePurgeTask decodes a task built by NewPurgeTask.
func ParsePurgeTask(t *asynq.Task) (PurgePayload, error) {
	var p PurgePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if p.URL == "" {
		return p, fmt.Errorf("invalid task data: missing url")
	}
	return p, nil
}

func (q *Queue) EnqueuePurge(ctx context.Context, url string) error {
	task, err := NewPurgeTask(url)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func progressKey(jobID string) string {
	return fmt.Sprintf("job_progress:%s", jobID)
}

// SaveProgress stores snap with the configured expiry.
func (q *Queue) SaveProgress(ctx context.Context, snap ProgressSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, progressKey(snap.JobID), data, q.progressTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

func (q *Queue) GetProgress(ctx context.Context, jobID string) (*ProgressSnapshot, error) {
	data, err := q.redis.Get(ctx, progressKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	var snap ProgressSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &snap, nil
}

// Ping checks the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	return q.redis.Ping(ctx).Err()
}

func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}
