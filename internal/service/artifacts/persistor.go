// Package artifacts stores job inputs and outputs. Every operation absorbs
// failures: callers get an empty URL or id and carry on.
package artifacts

import (
	"context"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
	"github.com/feichai0017/exam-solver/pkg/storage"
)

// Purger retries artifact deletions out of band.
type Purger interface {
	EnqueuePurge(ctx context.Context, publicURL string) error
}

type Persistor struct {
	store  storage.Storage
	repo   repository.Repository
	purger Purger
	logger logger.Logger
}

// NewPersistor wires storage and records. purger may be nil.
func NewPersistor(store storage.Storage, repo repository.Repository, purger Purger, log logger.Logger) *Persistor {
	return &Persistor{
		store:  store,
		repo:   repo,
		purger: purger,
		logger: log.Named("artifacts"),
	}
}

// Upload stores data at path and returns its public URL, or "" on failure.
func (p *Persistor) Upload(ctx context.Context, path string, data []byte, contentType string) string {
	url, err := p.store.Upload(ctx, path, data, contentType)
	if err != nil {
		p.logger.Error("Artifact upload failed",
			logger.String("path", path),
			logger.Error(err),
		)
		return ""
	}
	return url
}

// ReplaceText re-uploads text at the object path behind url. It reports
// false when the path cannot be derived or the upload fails.
func (p *Persistor) ReplaceText(ctx context.Context, url, text string) bool {
	path, err := p.store.ObjectPath(url)
	if err != nil {
		p.logger.Warn("Cannot resolve artifact path", logger.String("url", url))
		return false
	}
	return p.Upload(ctx, path, []byte(text), MarkdownContentType) != ""
}

// DeleteArtifacts removes every non-empty url. Failed deletions are handed
// to the purger when one is configured.
func (p *Persistor) DeleteArtifacts(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		err := p.store.Delete(ctx, url)
		if err == nil {
			continue
		}
		p.logger.Warn("Artifact delete failed",
			logger.String("url", url),
			logger.Error(err),
		)
		if p.purger == nil {
			continue
		}
		if err := p.purger.EnqueuePurge(ctx, url); err != nil {
			p.logger.Error("Failed to schedule artifact purge",
				logger.String("url", url),
				logger.Error(err),
			)
		}
	}
}

// CreateSolution inserts rec and returns its id, or "" on failure.
func (p *Persistor) CreateSolution(ctx context.Context, rec *models.SolutionRecord) string {
	if err := p.repo.CreateSolution(ctx, rec); err != nil {
		p.logger.Error("Failed to save solution record", logger.String("name", rec.Name), logger.Error(err))
		return ""
	}
	return rec.ID
}

func (p *Persistor) CreateEvaluation(ctx context.Context, rec *models.EvaluationRecord) string {
	if err := p.repo.CreateEvaluation(ctx, rec); err != nil {
		p.logger.Error("Failed to save evaluation record",
			logger.String("paper_id", rec.PaperID),
			logger.Error(err),
		)
		return ""
	}
	return rec.ID
}

func (p *Persistor) CreatePaper(ctx context.Context, paper *models.GeneratedPaper) string {
	if err := p.repo.CreatePaper(ctx, paper); err != nil {
		p.logger.Error("Failed to save generated paper", logger.String("name", paper.Name), logger.Error(err))
		return ""
	}
	return paper.ID
}
