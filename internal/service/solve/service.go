// Package solve turns uploaded exam papers into streamed, persisted
// worked solutions.
package solve

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
)

// ErrNoDocuments is returned when a request carries no files.
var ErrNoDocuments = errors.New("no documents uploaded")

type Extractor interface {
	Extract(ctx context.Context, docs []models.Document) ([]models.PageImage, error)
}

// Persistor is the storage side of a job. Failures surface as empty values.
type Persistor interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) string
	CreateSolution(ctx context.Context, rec *models.SolutionRecord) string
	DeleteArtifacts(ctx context.Context, urls ...string)
}

// ProgressTracker records job progress for status polling.
type ProgressTracker interface {
	SaveProgress(ctx context.Context, snap queue.ProgressSnapshot) error
}

type Service struct {
	extractor Extractor
	solver    *PageSolver
	persistor Persistor
	progress  ProgressTracker
	pageDelay time.Duration
	logger    logger.Logger
}

type Option func(*Service)

// WithPageDelay spaces successive model calls to stay under provider quotas.
func WithPageDelay(d time.Duration) Option {
	return func(s *Service) { s.pageDelay = d }
}

func WithProgressTracker(t ProgressTracker) Option {
	return func(s *Service) { s.progress = t }
}

func NewService(extractor Extractor, model inference.Model, persistor Persistor, log logger.Logger, opts ...Option) *Service {
	log = log.Named("solve")
	s := &Service{
		extractor: extractor,
		solver:    NewPageSolver(model, log),
		persistor: persistor,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare extracts pages from docs and returns a job ready to run. Input
// problems are reported here, before any model call.
func (s *Service) Prepare(ctx context.Context, name string, docs []models.Document) (*Job, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	pages, err := s.extractor.Extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = strings.TrimSuffix(docs[0].Filename, filepath.Ext(docs[0].Filename))
	}

	job := &Job{
		ID:        uuid.NewString(),
		Name:      name,
		Documents: docs,
		Pages:     pages,
		svc:       s,
	}
	job.logger = s.logger.With(logger.String("job_id", job.ID))
	job.logger.Info("Job prepared",
		logger.Int("documents", len(docs)),
		logger.Int("pages", len(pages)),
	)
	return job, nil
}
