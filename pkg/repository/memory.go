package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/feichai0017/exam-solver/internal/models"
)

// MemoryRepository keeps records in process memory. Used when no database
// DSN is configured and by tests.
type MemoryRepository struct {
	mu          sync.RWMutex
	solutions   map[string]models.SolutionRecord
	evaluations map[string]models.EvaluationRecord
	papers      map[string]models.GeneratedPaper
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		solutions:   make(map[string]models.SolutionRecord),
		evaluations: make(map[string]models.EvaluationRecord),
		papers:      make(map[string]models.GeneratedPaper),
	}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) CreateSolution(ctx context.Context, rec *models.SolutionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.EnsureID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solutions[rec.ID] = *rec
	return nil
}

func (r *MemoryRepository) GetSolution(_ context.Context, id string) (*models.SolutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.solutions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) ListSolutions(context.Context) ([]models.SolutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.SolutionRecord, 0, len(r.solutions))
	for _, rec := range r.solutions {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) DeleteSolution(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.solutions[id]; !ok {
		return ErrNotFound
	}
	delete(r.solutions, id)
	return nil
}

func (r *MemoryRepository) CreateEvaluation(ctx context.Context, rec *models.EvaluationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.EnsureID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations[rec.ID] = *rec
	return nil
}

func (r *MemoryRepository) GetEvaluation(_ context.Context, id string) (*models.EvaluationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.evaluations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) ListEvaluations(_ context.Context, paperID string) ([]models.EvaluationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.EvaluationRecord, 0)
	for _, rec := range r.evaluations {
		if rec.PaperID == paperID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) UpdateEvaluationScore(_ context.Context, id, score string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.evaluations[id]
	if !ok {
		return ErrNotFound
	}
	rec.Score = score
	r.evaluations[id] = rec
	return nil
}

func (r *MemoryRepository) DeleteEvaluation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.evaluations[id]; !ok {
		return ErrNotFound
	}
	delete(r.evaluations, id)
	return nil
}

func (r *MemoryRepository) CreatePaper(ctx context.Context, p *models.GeneratedPaper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.EnsureID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.papers[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetPaper(_ context.Context, id string) (*models.GeneratedPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.papers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) ListPapers(context.Context) ([]models.GeneratedPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.GeneratedPaper, 0, len(r.papers))
	for _, p := range r.papers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) DeletePaper(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.papers[id]; !ok {
		return ErrNotFound
	}
	delete(r.papers, id)
	return nil
}
