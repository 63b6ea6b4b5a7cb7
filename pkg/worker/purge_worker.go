package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
)

// Deleter removes a stored artifact by its public URL.
type Deleter interface {
	Delete(ctx context.Context, publicURL string) error
}

// PurgeWorker retries artifact deletions that failed during a cascade.
type PurgeWorker struct {
	BaseWorker
	store Deleter
}

func NewPurgeWorker(redisOpt asynq.RedisConnOpt, cfg *Config, store Deleter, log logger.Logger) *PurgeWorker {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.Queues,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return time.Duration(n) * time.Minute
		},
	})

	w := &PurgeWorker{
		BaseWorker: BaseWorker{
			server: server,
			mux:    asynq.NewServeMux(),
			logger: log.Named("purge-worker"),
		},
		store: store,
	}
	w.mux.HandleFunc(queue.TaskTypeArtifactPurge, w.handlePurge)
	return w
}

func (w *PurgeWorker) handlePurge(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParsePurgeTask(t)
	if err != nil {
		w.logger.Error("Dropping malformed purge task",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.store.Delete(ctx, payload.URL); err != nil {
		w.logger.Warn("Artifact purge failed, will retry",
			logger.String("url", payload.URL),
			logger.Error(err),
		)
		return err
	}

	w.logger.Info("Artifact purged",
		logger.String("url", payload.URL),
		logger.Duration("delay", time.Since(payload.RequestedAt)),
	)
	return nil
}
