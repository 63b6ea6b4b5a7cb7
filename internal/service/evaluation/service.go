// Package evaluation grades student answer sheets against a solved paper.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/internal/service/score"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
)

var (
	ErrMissingStudent = errors.New("student name is required")
	ErrMissingPaper   = errors.New("paper id is required")
	// ErrArtifactUnavailable means the stored report could not be rewritten.
	ErrArtifactUnavailable = errors.New("artifact could not be updated")
)

const evaluatorPrompt = `Reference solution:

%s

Student: %s

Grade the attached answer sheet against the reference solution.`

const noReference = "(none provided, grade on correctness alone)"

type Extractor interface {
	Extract(ctx context.Context, docs []models.Document) ([]models.PageImage, error)
}

type Persistor interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) string
	ReplaceText(ctx context.Context, url, text string) bool
	DeleteArtifacts(ctx context.Context, urls ...string)
	CreateEvaluation(ctx context.Context, rec *models.EvaluationRecord) string
}

type Store interface {
	repository.SolutionStore
	repository.EvaluationStore
}

// Request is one answer sheet submitted for grading.
type Request struct {
	PaperID           string
	StudentName       string
	Submission        models.Document
	ReferenceSolution string
}

type Result struct {
	ID          string `json:"id"`
	StudentName string `json:"student_name"`
	Score       string `json:"score"`
	Report      string `json:"evaluation_report"`
}

type Service struct {
	extractor Extractor
	model     inference.Model
	persistor Persistor
	store     Store
	logger    logger.Logger
}

func NewService(extractor Extractor, model inference.Model, persistor Persistor, store Store, log logger.Logger) *Service {
	return &Service{
		extractor: extractor,
		model:     model,
		persistor: persistor,
		store:     store,
		logger:    log.Named("evaluation"),
	}
}

// Evaluate grades one submission in a single model call over all of its
// pages, then stores the submission, the report and the record.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	req.StudentName = strings.TrimSpace(req.StudentName)
	if req.PaperID == "" {
		return nil, ErrMissingPaper
	}
	if req.StudentName == "" {
		return nil, ErrMissingStudent
	}
	if _, err := s.store.GetSolution(ctx, req.PaperID); err != nil {
		return nil, err
	}

	pages, err := s.extractor.Extract(ctx, []models.Document{req.Submission})
	if err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(req.ReferenceSolution)
	if reference == "" {
		reference = noReference
	}
	parts := make([]inference.Part, len(pages))
	for i, p := range pages {
		parts[i] = inference.Part{MIMEType: p.MIMEType, Data: p.Data}
	}

	report, err := s.model.Generate(ctx, inference.Request{
		SystemInstruction: inference.EvaluatorSystemPrompt,
		Prompt:            fmt.Sprintf(evaluatorPrompt, reference, req.StudentName),
		Parts:             parts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate submission: %w", err)
	}
	if strings.TrimSpace(report) == "" {
		return nil, fmt.Errorf("failed to evaluate submission: %w", inference.ErrEmptyResponse)
	}
	result := &Result{
		StudentName: req.StudentName,
		Score:       score.Extract(report),
		Report:      report,
	}

	id := uuid.NewString()
	sub := req.Submission
	rec := &models.EvaluationRecord{
		ID:            id,
		PaperID:       req.PaperID,
		StudentName:   req.StudentName,
		Score:         result.Score,
		SubmissionURL: s.persistor.Upload(ctx, artifacts.SubmissionPath(id, sub.Filename), sub.Data, sub.ContentType),
		ReportURL:     s.persistor.Upload(ctx, artifacts.ReportPath(id), []byte(report), artifacts.MarkdownContentType),
	}
	result.ID = s.persistor.CreateEvaluation(ctx, rec)

	s.logger.Info("Submission evaluated",
		logger.String("paper_id", req.PaperID),
		logger.String("evaluation_id", result.ID),
		logger.Int("pages", len(pages)),
		logger.String("score", result.Score),
	)
	return result, nil
}

// ListByPaper returns a paper's evaluations newest first.
func (s *Service) ListByPaper(ctx context.Context, paperID string) ([]models.EvaluationRecord, error) {
	evs, err := s.store.ListEvaluations(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evs, nil
}

// Update overrides the score and, when report is non-empty, rewrites the
// stored report in place.
func (s *Service) Update(ctx context.Context, id, newScore, report string) error {
	rec, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return err
	}

	if report != "" {
		if rec.ReportURL == "" || !s.persistor.ReplaceText(ctx, rec.ReportURL, report) {
			return ErrArtifactUnavailable
		}
	}
	if newScore = strings.TrimSpace(newScore); newScore != "" && newScore != rec.Score {
		if err := s.store.UpdateEvaluationScore(ctx, id, newScore); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an evaluation's artifacts, then its record.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return err
	}
	s.persistor.DeleteArtifacts(ctx, rec.SubmissionURL, rec.ReportURL)
	return s.store.DeleteEvaluation(ctx, id)
}
