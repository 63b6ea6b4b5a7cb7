// Package history manages solved papers after their job has finished.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
)

// ErrArtifactUnavailable means a record exists but its stored text could
// not be rewritten.
var ErrArtifactUnavailable = errors.New("artifact could not be updated")

type Persistor interface {
	ReplaceText(ctx context.Context, url, text string) bool
	DeleteArtifacts(ctx context.Context, urls ...string)
}

type Store interface {
	repository.SolutionStore
	repository.EvaluationStore
}

type Service struct {
	store     Store
	persistor Persistor
	logger    logger.Logger
}

func NewService(store Store, persistor Persistor, log logger.Logger) *Service {
	return &Service{store: store, persistor: persistor, logger: log.Named("history")}
}

// List returns solved papers newest first.
func (s *Service) List(ctx context.Context) ([]models.SolutionRecord, error) {
	papers, err := s.store.ListSolutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	return papers, nil
}

// Delete removes a paper together with its student evaluations. Artifacts
// go first so a failure never leaves a record pointing at nothing.
func (s *Service) Delete(ctx context.Context, paperID string) error {
	paper, err := s.store.GetSolution(ctx, paperID)
	if err != nil {
		return err
	}

	evaluations, err := s.store.ListEvaluations(ctx, paperID)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}
	for _, ev := range evaluations {
		s.persistor.DeleteArtifacts(ctx, ev.SubmissionURL, ev.ReportURL)
		if err := s.store.DeleteEvaluation(ctx, ev.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to delete evaluation %s: %w", ev.ID, err)
		}
	}

	s.persistor.DeleteArtifacts(ctx, paper.OriginalURL, paper.SolutionURL)
	if err := s.store.DeleteSolution(ctx, paperID); err != nil {
		return err
	}

	s.logger.Info("Paper deleted",
		logger.String("paper_id", paperID),
		logger.Int("evaluations", len(evaluations)),
	)
	return nil
}

// ReplaceSolution overwrites the stored solution text in place. The record
// itself is left unchanged.
func (s *Service) ReplaceSolution(ctx context.Context, paperID, text string) error {
	paper, err := s.store.GetSolution(ctx, paperID)
	if err != nil {
		return err
	}
	if paper.SolutionURL == "" || !s.persistor.ReplaceText(ctx, paper.SolutionURL, text) {
		return ErrArtifactUnavailable
	}
	return nil
}
