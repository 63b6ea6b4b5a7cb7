package artifacts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
	"github.com/feichai0017/exam-solver/pkg/storage/memory"
)

type brokenStore struct{}

func (brokenStore) Upload(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("bucket unavailable")
}

func (brokenStore) ObjectPath(string) (string, error) {
	return "", errors.New("bucket unavailable")
}

type brokenRepo struct {
	*repository.MemoryRepository
}

func (brokenRepo) CreateSolution(context.Context, *models.SolutionRecord) error {
	return errors.New("db down")
}

type recordingPurger struct {
	urls []string
}

func (r *recordingPurger) EnqueuePurge(_ context.Context, url string) error {
	r.urls = append(r.urls, url)
	return nil
}

func TestUploadAndReplaceText(t *testing.T) {
	ctx := context.Background()
	store := memory.New("papers", "")
	p := NewPersistor(store, repository.NewMemoryRepository(), nil, logger.NewTestLogger())

	url := p.Upload(ctx, SolutionPath("j1"), []byte("v1"), MarkdownContentType)
	require.NotEmpty(t, url)
	assert.Equal(t, url, p.Upload(ctx, SolutionPath("j1"), []byte("v1"), MarkdownContentType))

	require.True(t, p.ReplaceText(ctx, url, "v2"))
	obj, ok := store.Get(SolutionPath("j1"))
	require.True(t, ok)
	assert.Equal(t, "v2", string(obj.Data))

	assert.False(t, p.ReplaceText(ctx, "", "v3"))
	assert.False(t, p.ReplaceText(ctx, "https://elsewhere.test/x.md", "v3"))
}

func TestFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger()
	purger := &recordingPurger{}
	p := NewPersistor(brokenStore{}, brokenRepo{repository.NewMemoryRepository()}, purger, log)

	assert.Empty(t, p.Upload(ctx, OriginalPath("j1", "a.png"), []byte{1}, "image/png"))
	assert.Empty(t, p.CreateSolution(ctx, &models.SolutionRecord{Name: "x"}))

	p.DeleteArtifacts(ctx, "", "memory://local/papers/originals/j1_a.png")
	assert.Equal(t, []string{"memory://local/papers/originals/j1_a.png"}, purger.urls)
	assert.GreaterOrEqual(t, log.Count("ERROR"), 2)
}

func TestCreateRecordsReturnIDs(t *testing.T) {
	ctx := context.Background()
	p := NewPersistor(memory.New("papers", ""), repository.NewMemoryRepository(), nil, logger.NewTestLogger())

	assert.NotEmpty(t, p.CreateSolution(ctx, &models.SolutionRecord{Name: "Maths"}))
	assert.NotEmpty(t, p.CreateEvaluation(ctx, &models.EvaluationRecord{PaperID: "p", StudentName: "s"}))
	assert.NotEmpty(t, p.CreatePaper(ctx, &models.GeneratedPaper{Name: "g"}))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "originals/j1_scan.png", OriginalPath("j1", `C:\Users\me\scan.png`))
	assert.Equal(t, "students/j2_upload", SubmissionPath("j2", ""))
	assert.Equal(t, "solutions/j3_solution.md", SolutionPath("j3"))
	assert.Equal(t, "evaluations/j4_report.md", ReportPath("j4"))
	assert.Equal(t, "generated/j5_paper.md", GeneratedPath("j5"))
}

func TestReplaceTextWhenBaseURLNamesTheBucket(t *testing.T) {
	ctx := context.Background()
	store := memory.New("papers", "https://cdn.example.com/papers")
	p := NewPersistor(store, repository.NewMemoryRepository(), nil, logger.NewTestLogger())

	url := p.Upload(ctx, SolutionPath("j1"), []byte("old"), MarkdownContentType)
	require.Equal(t, "https://cdn.example.com/papers/papers/solutions/j1_solution.md", url)

	require.True(t, p.ReplaceText(ctx, url, "new"))
	obj, ok := store.Get(SolutionPath("j1"))
	require.True(t, ok)
	assert.Equal(t, "new", string(obj.Data))
	assert.Equal(t, 1, store.Len())
}
