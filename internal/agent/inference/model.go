// Package inference wraps the hosted multimodal models that read exam pages.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// Generate returns ("", nil) when the model finishes normally without text;
// callers decide what an empty answer means.
var (
	// ErrEmptyResponse is returned by callers that cannot use an empty answer.
	ErrEmptyResponse = errors.New("model returned no text")
	// ErrNoCandidates means the provider sent back no answer at all.
	ErrNoCandidates = errors.New("model returned no candidates")
	// ErrBlocked means the provider withheld the answer, e.g. for safety.
	ErrBlocked = errors.New("model response blocked")
	// ErrUnsupportedPart means the provider cannot read a part's media type.
	ErrUnsupportedPart = errors.New("unsupported part media type")
)

// Part is binary model input such as a rendered page or a photo.
type Part struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	SystemInstruction string
	Prompt            string
	Parts             []Part
}

// Model generates text for a multimodal request. Implementations are safe
// for concurrent use.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.InferenceConfig, log logger.Logger) (Model, error) {
	log = log.Named("inference")
	switch cfg.Provider {
	case "vertex":
		return NewVertexModel(ctx, cfg, log)
	case "ollama":
		return NewOllamaModel(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Provider)
	}
}

// cleanText trims model output and unwraps a response that is entirely
// enclosed in one markdown code fence.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return s
	}
	// the opening fence may carry a language tag
	if strings.Contains(body[nl+1:], "```") {
		return s
	}
	return strings.TrimSpace(body[nl+1:])
}
