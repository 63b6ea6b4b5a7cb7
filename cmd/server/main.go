package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/exam-solver/api/handlers"
	"github.com/feichai0017/exam-solver/api/routes"
	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/internal/agent/document"
	"github.com/feichai0017/exam-solver/internal/agent/document/image"
	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/internal/service/evaluation"
	"github.com/feichai0017/exam-solver/internal/service/generation"
	"github.com/feichai0017/exam-solver/internal/service/history"
	"github.com/feichai0017/exam-solver/internal/service/solve"
	"github.com/feichai0017/exam-solver/internal/utils/validator"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
	"github.com/feichai0017/exam-solver/pkg/repository"
	"github.com/feichai0017/exam-solver/pkg/storage"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		panic(err)
	}

	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
		logger.WithInitialFields(map[string]interface{}{"service": "exam-solver"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	store, err := storage.NewStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to init storage", logger.Error(err))
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	repo, err := repository.New(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to init repository", logger.Error(err))
	}
	defer repo.Close()

	checks := map[string]handlers.HealthCheck{}
	if p, ok := repo.(interface{ Ping(context.Context) error }); ok {
		checks["database"] = p.Ping
	}

	// redis is optional: without it there are no status snapshots or deferred purges
	solveOpts := []solve.Option{solve.WithPageDelay(cfg.Inference.PageDelay)}
	var (
		purger   artifacts.Purger
		progress handlers.ProgressReader
	)
	if cfg.Redis.Addr != "" {
		q, err := queue.NewQueue(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", logger.Error(err))
		}
		defer q.Close()
		purger, progress = q, q
		solveOpts = append(solveOpts, solve.WithProgressTracker(q))
		checks["redis"] = q.Ping
	} else {
		log.Warn("No redis configured, job status and deferred purges are disabled")
	}

	model, err := inference.New(ctx, cfg.Inference, log)
	if err != nil {
		log.Fatal("Failed to init inference model", logger.Error(err))
	}
	if c, ok := model.(io.Closer); ok {
		defer c.Close()
	}

	persistor := artifacts.NewPersistor(store, repo, purger, log)
	rasterizer, err := pdf.NewRasterizer(pdf.RasterizerConfig{Instances: cfg.Upload.PDFRenderers}, log.Named("pdf"))
	if err != nil {
		log.Fatal("Failed to init PDF renderer", logger.Error(err))
	}
	defer rasterizer.Close()

	extractor := document.NewPageExtractor(rasterizer, log,
		document.WithImageNormalizer(image.NewNormalizer(image.NormalizerConfig{
			MaxDimension: cfg.Upload.ImageMaxDimension,
			Enhance:      cfg.Upload.EnhanceImages,
		}, log)),
	)

	h := handlers.NewHandlers(handlers.Services{
		Solve:      solve.NewService(extractor, model, persistor, log, solveOpts...),
		History:    history.NewService(repo, persistor, log),
		Evaluation: evaluation.NewService(extractor, model, persistor, repo, log),
		Generation: generation.NewService(model, persistor, repo, log),
		Progress:   progress,
		Validator:  validator.FromConfig(log, cfg.Upload),
		Checks:     checks,
	}, log)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.Upload.MaxFileSize
	routes.SetupRoutes(r, h, log, cfg.Server.AllowOrigins)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Backend),
			logger.String("inference", cfg.Inference.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
