package solve

import (
	"context"
	"fmt"
	"strings"

	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// NoTextPlaceholder stands in for a page the model answered with nothing.
const NoTextPlaceholder = "_No text generated for this page._"

const sectionSeparator = "\n\n---\n\n"

// PageSolver makes exactly one model call per page and never fails: errors
// are captured in the returned result.
type PageSolver struct {
	model  inference.Model
	logger logger.Logger
}

func NewPageSolver(model inference.Model, log logger.Logger) *PageSolver {
	return &PageSolver{model: model, logger: log}
}

func (s *PageSolver) SolvePage(ctx context.Context, page models.PageImage, pageNumber int) models.PageResult {
	text, err := s.model.Generate(ctx, inference.Request{
		SystemInstruction: inference.SolverSystemPrompt,
		Prompt:            inference.SolverUserPrompt,
		Parts:             []inference.Part{{MIMEType: page.MIMEType, Data: page.Data}},
	})
	if err != nil {
		s.logger.Warn("Page solving failed",
			logger.Int("page", pageNumber),
			logger.String("source", page.String()),
			logger.Error(err),
		)
		return models.PageResult{PageNumber: pageNumber, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		text = NoTextPlaceholder
	}
	return models.PageResult{PageNumber: pageNumber, Text: text}
}

// Section renders one page of the final document. Failed pages keep their
// heading and carry an inline error marker instead of a solution.
func Section(r models.PageResult) string {
	heading := fmt.Sprintf("## Page %d", r.PageNumber)
	if r.Failed() {
		return fmt.Sprintf("%s\n\n> **Error solving page %d:** %v", heading, r.PageNumber, r.Err)
	}
	return heading + "\n\n" + r.Text
}

// Concatenate joins page sections in the order given.
func Concatenate(results []models.PageResult) string {
	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = Section(r)
	}
	return strings.Join(sections, sectionSeparator)
}
