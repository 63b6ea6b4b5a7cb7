package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
	"github.com/feichai0017/exam-solver/pkg/storage/memory"
)

type fixture struct {
	store     *memory.Storage
	repo      *repository.MemoryRepository
	persistor *artifacts.Persistor
	svc       *Service
}

func newFixture() *fixture {
	log := logger.NewTestLogger()
	store := memory.New("papers", "")
	repo := repository.NewMemoryRepository()
	p := artifacts.NewPersistor(store, repo, nil, log)
	return &fixture{store: store, repo: repo, persistor: p, svc: NewService(repo, p, log)}
}

func (f *fixture) seedPaper(t *testing.T, id string) *models.SolutionRecord {
	t.Helper()
	ctx := context.Background()
	rec := &models.SolutionRecord{
		ID:          id,
		Name:        "paper " + id,
		OriginalURL: f.persistor.Upload(ctx, artifacts.OriginalPath(id, "q.pdf"), []byte("pdf"), "application/pdf"),
		SolutionURL: f.persistor.Upload(ctx, artifacts.SolutionPath(id), []byte("answers"), artifacts.MarkdownContentType),
	}
	require.NoError(t, f.repo.CreateSolution(ctx, rec))
	return rec
}

func TestDeleteCascadesToEvaluations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedPaper(t, "p1")
	f.seedPaper(t, "p2")

	for _, student := range []string{"asha", "ben"} {
		require.NoError(t, f.repo.CreateEvaluation(ctx, &models.EvaluationRecord{
			PaperID:       "p1",
			StudentName:   student,
			Score:         "5/10",
			SubmissionURL: f.persistor.Upload(ctx, artifacts.SubmissionPath(student, "a.png"), []byte("img"), "image/png"),
			ReportURL:     f.persistor.Upload(ctx, artifacts.ReportPath(student), []byte("report"), artifacts.MarkdownContentType),
		}))
	}
	require.Equal(t, 8, f.store.Len())

	require.NoError(t, f.svc.Delete(ctx, "p1"))

	_, err := f.repo.GetSolution(ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	evs, err := f.repo.ListEvaluations(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, evs)
	// only p2's two artifacts remain
	assert.Equal(t, 2, f.store.Len())

	papers, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "p2", papers[0].ID)
}

func TestDeleteUnknownPaper(t *testing.T) {
	f := newFixture()
	err := f.svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReplaceSolutionRewritesInPlace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	rec := f.seedPaper(t, "p1")

	require.NoError(t, f.svc.ReplaceSolution(ctx, "p1", "corrected"))

	obj, ok := f.store.Get(artifacts.SolutionPath("p1"))
	require.True(t, ok)
	assert.Equal(t, "corrected", string(obj.Data))

	got, err := f.repo.GetSolution(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec.SolutionURL, got.SolutionURL)

	assert.ErrorIs(t, f.svc.ReplaceSolution(ctx, "nope", "x"), repository.ErrNotFound)
}

func TestReplaceSolutionWithoutArtifact(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.repo.CreateSolution(ctx, &models.SolutionRecord{ID: "p1", Name: "upload failed"}))

	assert.ErrorIs(t, f.svc.ReplaceSolution(ctx, "p1", "x"), ErrArtifactUnavailable)
}
