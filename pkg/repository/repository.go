// Package repository persists solution, evaluation and generated paper records.
package repository

import (
	"context"
	"errors"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

type SolutionStore interface {
	CreateSolution(ctx context.Context, rec *models.SolutionRecord) error
	GetSolution(ctx context.Context, id string) (*models.SolutionRecord, error)
	// ListSolutions returns records newest first.
	ListSolutions(ctx context.Context) ([]models.SolutionRecord, error)
	DeleteSolution(ctx context.Context, id string) error
}

type EvaluationStore interface {
	CreateEvaluation(ctx context.Context, rec *models.EvaluationRecord) error
	GetEvaluation(ctx context.Context, id string) (*models.EvaluationRecord, error)
	// ListEvaluations returns the evaluations of one paper, newest first.
	ListEvaluations(ctx context.Context, paperID string) ([]models.EvaluationRecord, error)
	UpdateEvaluationScore(ctx context.Context, id, score string) error
	DeleteEvaluation(ctx context.Context, id string) error
}

type PaperStore interface {
	CreatePaper(ctx context.Context, p *models.GeneratedPaper) error
	GetPaper(ctx context.Context, id string) (*models.GeneratedPaper, error)
	ListPapers(ctx context.Context) ([]models.GeneratedPaper, error)
	DeletePaper(ctx context.Context, id string) error
}

type Repository interface {
	SolutionStore
	EvaluationStore
	PaperStore
	Close() error
}

// New opens Postgres when a DSN is configured and falls back to memory.
func New(cfg config.DatabaseConfig, log logger.Logger) (Repository, error) {
	if cfg.DSN == "" {
		log.Warn("No database DSN configured, records are kept in memory")
		return NewMemoryRepository(), nil
	}
	return NewPostgresRepository(cfg, log)
}
