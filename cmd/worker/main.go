package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
	"github.com/feichai0017/exam-solver/pkg/storage"
	"github.com/feichai0017/exam-solver/pkg/worker"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		panic(err)
	}

	// 初始化日志
	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
		logger.WithInitialFields(map[string]interface{}{"service": "exam-solver-worker"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Redis.Addr == "" {
		log.Error("REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to init storage", logger.Error(err))
		os.Exit(1)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	workerCfg := &worker.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			queue.QueueDefault: 3,
			queue.QueueLow:     1,
		},
	}
	purgeWorker := worker.NewPurgeWorker(queue.RedisClientOpt(cfg.Redis), workerCfg, store, log)

	if err := purgeWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Worker started", logger.Int("concurrency", workerCfg.Concurrency))

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// 优雅关闭
	log.Info("Shutting down worker...")
	purgeWorker.Stop()
	log.Info("Worker stopped")
}
