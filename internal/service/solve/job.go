package solve

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/queue"
)

// Job is one solve request: its documents, their flattened pages and the
// results accumulated while it runs. A Job runs at most once.
type Job struct {
	ID        string
	Name      string
	Documents []models.Document
	Pages     []models.PageImage

	svc    *Service
	logger logger.Logger
}

// Run solves the pages one after another and streams a PageProgress after
// each, then a single SolveCompleted once results are persisted. The
// channel is closed when the job ends.
//
// Cancelling ctx stops the job after the in-flight page. Model calls and
// storage writes run detached from ctx so a started call always finishes.
// A cancelled job writes no record and removes the originals it uploaded.
func (j *Job) Run(ctx context.Context) <-chan models.Event {
	events := make(chan models.Event)
	go func() {
		defer close(events)
		j.run(ctx, events)
	}()
	return events
}

func (j *Job) run(ctx context.Context, events chan<- models.Event) {
	detached := context.WithoutCancel(ctx)
	total := len(j.Pages)
	started := time.Now()

	originalURLs := make([]string, len(j.Documents))
	var uploads errgroup.Group
	for i, doc := range j.Documents {
		uploads.Go(func() error {
			originalURLs[i] = j.svc.persistor.Upload(detached,
				artifacts.OriginalPath(j.ID, doc.Filename), doc.Data, doc.ContentType)
			return nil
		})
	}

	abandon := func(reason string) {
		_ = uploads.Wait()
		j.svc.persistor.DeleteArtifacts(detached, originalURLs...)
		j.logger.Warn("Job abandoned", logger.String("reason", reason), logger.Error(ctx.Err()))
	}

	results := make([]models.PageResult, 0, total)
	for i, page := range j.Pages {
		if i > 0 && !j.pace(ctx) {
			abandon("cancelled between pages")
			return
		}
		if ctx.Err() != nil {
			abandon("cancelled before page")
			return
		}

		res := j.svc.solver.SolvePage(detached, page, i+1)
		results = append(results, res)
		j.track(detached, models.StatusSolvingPage, i+1, total, "")

		if !send(ctx, events, models.NewPageProgress(i+1, total)) {
			abandon("consumer gone")
			return
		}
	}

	_ = uploads.Wait()
	if ctx.Err() != nil {
		abandon("cancelled before persistence")
		return
	}

	text := Concatenate(results)
	solutionURL := j.svc.persistor.Upload(detached, artifacts.SolutionPath(j.ID), []byte(text), artifacts.MarkdownContentType)

	var originalURL string
	if len(originalURLs) > 0 {
		originalURL = originalURLs[0]
	}
	paperID := j.svc.persistor.CreateSolution(detached, &models.SolutionRecord{
		ID:          j.ID,
		Name:        j.Name,
		OriginalURL: originalURL,
		SolutionURL: solutionURL,
	})
	j.track(detached, models.StatusCompleted, total, total, paperID)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	j.logger.Info("Job completed",
		logger.Int("pages", total),
		logger.Int("failed_pages", failed),
		logger.String("paper_id", paperID),
		logger.Duration("elapsed", time.Since(started)),
	)

	send(ctx, events, models.SolveCompleted{
		Status:       models.StatusCompleted,
		PaperID:      paperID,
		OriginalURL:  originalURL,
		SolutionURL:  solutionURL,
		SolutionText: text,
	})
}

// pace waits the configured delay between model calls. It reports false
// if ctx ends first.
func (j *Job) pace(ctx context.Context) bool {
	if j.svc.pageDelay <= 0 {
		return true
	}
	timer := time.NewTimer(j.svc.pageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (j *Job) track(ctx context.Context, status string, current, total int, paperID string) {
	if j.svc.progress == nil {
		return
	}
	err := j.svc.progress.SaveProgress(ctx, queue.ProgressSnapshot{
		JobID:     j.ID,
		Status:    status,
		Current:   current,
		Total:     total,
		PaperID:   paperID,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		j.logger.Warn("Failed to save job progress", logger.Error(err))
	}
}

func send(ctx context.Context, events chan<- models.Event, ev models.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
