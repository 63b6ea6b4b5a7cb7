package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/internal/agent/document"
	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
	"github.com/feichai0017/exam-solver/pkg/storage/memory"
)

type stubModel struct {
	reply string
	err   error
	reqs  []inference.Request
}

func (m *stubModel) Generate(_ context.Context, req inference.Request) (string, error) {
	m.reqs = append(m.reqs, req)
	return m.reply, m.err
}

type twoPageRenderer struct{}

func (twoPageRenderer) RenderPages(context.Context, []byte) ([]pdf.Page, error) {
	return []pdf.Page{
		{Number: 1, MIMEType: pdf.PageMIMEType, Data: []byte("sheet 1")},
		{Number: 2, MIMEType: pdf.PageMIMEType, Data: []byte("sheet 2")},
	}, nil
}

type fixture struct {
	store *memory.Storage
	repo  *repository.MemoryRepository
	model *stubModel
	svc   *Service
}

func newFixture(t *testing.T, model *stubModel) *fixture {
	t.Helper()
	log := logger.NewTestLogger()
	store := memory.New("papers", "")
	repo := repository.NewMemoryRepository()
	require.NoError(t, repo.CreateSolution(context.Background(), &models.SolutionRecord{ID: "paper-1", Name: "Physics"}))

	p := artifacts.NewPersistor(store, repo, nil, log)
	svc := NewService(document.NewPageExtractor(twoPageRenderer{}, log), model, p, repo, log)
	return &fixture{store: store, repo: repo, model: model, svc: svc}
}

func submission() models.Document {
	return models.Document{Filename: "asha.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
}

func TestEvaluateSendsAllPagesInOneCall(t *testing.T) {
	f := newFixture(t, &stubModel{reply: "| Q | Marks |\n| 1 | 3/5 |\n\nTotal Score: 7/10"})
	ctx := context.Background()

	res, err := f.svc.Evaluate(ctx, Request{
		PaperID:           "paper-1",
		StudentName:       " Asha ",
		Submission:        submission(),
		ReferenceSolution: "Q1: 42",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", res.StudentName)
	assert.Equal(t, "7/10", res.Score)
	assert.NotEmpty(t, res.ID)

	require.Len(t, f.model.reqs, 1)
	req := f.model.reqs[0]
	assert.Equal(t, inference.EvaluatorSystemPrompt, req.SystemInstruction)
	assert.Contains(t, req.Prompt, "Q1: 42")
	assert.Contains(t, req.Prompt, "Asha")
	require.Len(t, req.Parts, 2)
	assert.Equal(t, "sheet 2", string(req.Parts[1].Data))

	rec, err := f.repo.GetEvaluation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "paper-1", rec.PaperID)
	assert.Equal(t, "7/10", rec.Score)
	assert.True(t, strings.Contains(rec.SubmissionURL, "/students/"))
	assert.True(t, strings.Contains(rec.ReportURL, "/evaluations/"))

	report, ok := f.store.Get(artifacts.ReportPath(res.ID))
	require.True(t, ok)
	assert.Equal(t, res.Report, string(report.Data))
}

func TestEvaluateWithoutScoreLine(t *testing.T) {
	f := newFixture(t, &stubModel{reply: "Illegible submission."})
	res, err := f.svc.Evaluate(context.Background(), Request{PaperID: "paper-1", StudentName: "Ben", Submission: submission()})
	require.NoError(t, err)
	assert.Equal(t, "N/A", res.Score)
	assert.Contains(t, f.model.reqs[0].Prompt, noReference)
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	f := newFixture(t, &stubModel{reply: "x"})
	ctx := context.Background()

	_, err := f.svc.Evaluate(ctx, Request{PaperID: "paper-1", Submission: submission()})
	assert.ErrorIs(t, err, ErrMissingStudent)

	_, err = f.svc.Evaluate(ctx, Request{StudentName: "a", Submission: submission()})
	assert.ErrorIs(t, err, ErrMissingPaper)

	_, err = f.svc.Evaluate(ctx, Request{PaperID: "ghost", StudentName: "a", Submission: submission()})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.Evaluate(ctx, Request{PaperID: "paper-1", StudentName: "a", Submission: models.Document{Filename: "x.png"}})
	assert.ErrorIs(t, err, document.ErrNoValidPages)

	assert.Empty(t, f.model.reqs)
}

func TestEvaluateModelFailureStoresNothing(t *testing.T) {
	boom := errors.New("deadline exceeded")
	f := newFixture(t, &stubModel{err: boom})

	_, err := f.svc.Evaluate(context.Background(), Request{PaperID: "paper-1", StudentName: "a", Submission: submission()})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.store.Len())
}

func TestEvaluateEmptyReportStoresNothing(t *testing.T) {
	f := newFixture(t, &stubModel{reply: " \n"})

	_, err := f.svc.Evaluate(context.Background(), Request{PaperID: "paper-1", StudentName: "a", Submission: submission()})
	assert.ErrorIs(t, err, inference.ErrEmptyResponse)
	assert.Zero(t, f.store.Len())
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t, &stubModel{reply: "Total Score: 4/10"})
	ctx := context.Background()
	res, err := f.svc.Evaluate(ctx, Request{PaperID: "paper-1", StudentName: "Asha", Submission: submission()})
	require.NoError(t, err)

	require.NoError(t, f.svc.Update(ctx, res.ID, "6/10", "Regraded. Total Score: 6/10"))
	rec, err := f.repo.GetEvaluation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "6/10", rec.Score)
	report, _ := f.store.Get(artifacts.ReportPath(res.ID))
	assert.Equal(t, "Regraded. Total Score: 6/10", string(report.Data))

	assert.ErrorIs(t, f.svc.Update(ctx, "ghost", "1/1", ""), repository.ErrNotFound)

	list, err := f.svc.ListByPaper(ctx, "paper-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.svc.Delete(ctx, res.ID))
	assert.Zero(t, f.store.Len())
	assert.ErrorIs(t, f.svc.Delete(ctx, res.ID), repository.ErrNotFound)
}
