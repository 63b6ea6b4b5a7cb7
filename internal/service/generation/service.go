// Package generation writes new exam papers to a board's conventions.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/internal/service/artifacts"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/repository"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid paper request")

type Persistor interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) string
	DeleteArtifacts(ctx context.Context, urls ...string)
	CreatePaper(ctx context.Context, paper *models.GeneratedPaper) string
}

type Request struct {
	Name       string           `json:"name"`
	ClassLevel string           `json:"class_level"`
	Subject    string           `json:"subject"`
	Board      string           `json:"board"`
	PaperType  models.PaperType `json:"paper_type"`
	Chapters   []string         `json:"chapters"`
	Difficulty int              `json:"difficulty"`
}

type Result struct {
	PaperID string `json:"paper_id"`
	Text    string `json:"text"`
	URL     string `json:"url"`
}

type Service struct {
	model     inference.Model
	persistor Persistor
	store     repository.PaperStore
	logger    logger.Logger
}

func NewService(model inference.Model, persistor Persistor, store repository.PaperStore, log logger.Logger) *Service {
	return &Service{model: model, persistor: persistor, store: store, logger: log.Named("generation")}
}

// Normalize trims the request and checks it. The returned template is the
// board layout the paper will follow.
func Normalize(req *Request) (BoardTemplate, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.ClassLevel = strings.TrimSpace(req.ClassLevel)
	req.Name = strings.TrimSpace(req.Name)

	if req.Subject == "" {
		return BoardTemplate{}, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if req.ClassLevel == "" {
		return BoardTemplate{}, fmt.Errorf("%w: class level is required", ErrInvalidRequest)
	}
	tmpl, ok := Template(req.Board)
	if !ok {
		return BoardTemplate{}, fmt.Errorf("%w: unsupported board %q, expected one of %s",
			ErrInvalidRequest, req.Board, strings.Join(Boards(), ", "))
	}
	req.Board = tmpl.Name

	if req.Difficulty < 0 || req.Difficulty > 100 {
		return BoardTemplate{}, fmt.Errorf("%w: difficulty must be between 0 and 100", ErrInvalidRequest)
	}

	chapters := make([]string, 0, len(req.Chapters))
	for _, c := range req.Chapters {
		if c = strings.TrimSpace(c); c != "" {
			chapters = append(chapters, c)
		}
	}
	req.Chapters = chapters

	switch req.PaperType {
	case "":
		req.PaperType = models.PaperTypeComplete
	case models.PaperTypeComplete:
	case models.PaperTypeChapterwise:
		if len(req.Chapters) == 0 {
			return BoardTemplate{}, fmt.Errorf("%w: a chapterwise paper needs at least one chapter", ErrInvalidRequest)
		}
	default:
		return BoardTemplate{}, fmt.Errorf("%w: unsupported paper type %q", ErrInvalidRequest, req.PaperType)
	}

	if req.Name == "" {
		req.Name = fmt.Sprintf("%s %s Class %s", tmpl.Name, req.Subject, req.ClassLevel)
	}
	return tmpl, nil
}

// BuildPrompt renders the user prompt for a normalized request.
func BuildPrompt(req Request, tmpl BoardTemplate) string {
	label := DifficultyLabel(req.Difficulty)

	var b strings.Builder
	fmt.Fprintf(&b, "Write a new %s exam paper.\n\n", tmpl.Name)
	fmt.Fprintf(&b, "Class: %s\nSubject: %s\n", req.ClassLevel, req.Subject)
	fmt.Fprintf(&b, "Maximum marks: %d\nTime allowed: %s\n", tmpl.TotalMarks, tmpl.Duration)
	fmt.Fprintf(&b, "Difficulty: %s (%d/100). %s\n\n", label, req.Difficulty, difficultyGuidance(label))

	if req.PaperType == models.PaperTypeChapterwise {
		fmt.Fprintf(&b, "Cover only these chapters: %s.\n\n", strings.Join(req.Chapters, "; "))
	} else {
		b.WriteString("Cover the complete syllabus for this class and subject.\n\n")
		if len(req.Chapters) > 0 {
			fmt.Fprintf(&b, "Give extra weight to: %s.\n\n", strings.Join(req.Chapters, "; "))
		}
	}

	b.WriteString("Layout:\n")
	b.WriteString(tmpl.Layout)
	b.WriteString("\n\nStart with a header block (board, class, subject, marks, time) and general instructions.")
	return b.String()
}

// Generate writes a paper, stores it under generated/ and records it.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	tmpl, err := Normalize(&req)
	if err != nil {
		return nil, err
	}

	text, err := s.model.Generate(ctx, inference.Request{
		SystemInstruction: inference.GeneratorSystemPrompt,
		Prompt:            BuildPrompt(req, tmpl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate paper: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("failed to generate paper: %w", inference.ErrEmptyResponse)
	}

	id := uuid.NewString()
	url := s.persistor.Upload(ctx, artifacts.GeneratedPath(id), []byte(text), artifacts.MarkdownContentType)
	paperID := s.persistor.CreatePaper(ctx, &models.GeneratedPaper{
		ID:         id,
		Name:       req.Name,
		ClassLevel: req.ClassLevel,
		Subject:    req.Subject,
		Board:      req.Board,
		PaperType:  req.PaperType,
		Chapters:   req.Chapters,
		Difficulty: req.Difficulty,
		PaperURL:   url,
	})

	s.logger.Info("Paper generated",
		logger.String("paper_id", paperID),
		logger.String("board", req.Board),
		logger.String("difficulty", DifficultyLabel(req.Difficulty)),
	)
	return &Result{PaperID: paperID, Text: text, URL: url}, nil
}

func (s *Service) List(ctx context.Context) ([]models.GeneratedPaper, error) {
	papers, err := s.store.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated papers: %w", err)
	}
	return papers, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	paper, err := s.store.GetPaper(ctx, id)
	if err != nil {
		return err
	}
	s.persistor.DeleteArtifacts(ctx, paper.PaperURL)
	return s.store.DeletePaper(ctx, id)
}
