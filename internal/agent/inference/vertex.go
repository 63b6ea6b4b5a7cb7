package inference

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// VertexModel calls Gemini through Vertex AI.
type VertexModel struct {
	client *genai.Client
	cfg    config.InferenceConfig
	logger logger.Logger
}

func NewVertexModel(ctx context.Context, cfg config.InferenceConfig, log logger.Logger) (*VertexModel, error) {
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexModel{client: client, cfg: cfg, logger: log}, nil
}

func (v *VertexModel) Close() error {
	return v.client.Close()
}

func (v *VertexModel) Generate(ctx context.Context, req Request) (string, error) {
	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	model := v.model(req.SystemInstruction)

	parts := make([]genai.Part, 0, len(req.Parts)+1)
	for _, p := range req.Parts {
		parts = append(parts, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	return responseText(resp)
}

// model is built per call because the system instruction varies by use.
func (v *VertexModel) model(system string) *genai.GenerativeModel {
	model := v.client.GenerativeModel(v.cfg.Model)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(v.cfg.Temperature),
		TopP:            genai.Ptr(v.cfg.TopP),
		TopK:            genai.Ptr(int32(v.cfg.TopK)),
		MaxOutputTokens: genai.Ptr(int32(v.cfg.MaxOutputTokens)),
	}
	return model
}

// responseText returns the first candidate's text. A candidate that stopped
// normally without text yields "".
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	c := resp.Candidates[0]
	var sb strings.Builder
	if c.Content != nil {
		for _, part := range c.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	text := cleanText(sb.String())

	if text == "" && blocked(c.FinishReason) {
		return "", fmt.Errorf("%w: %s", ErrBlocked, c.FinishReason)
	}
	return text, nil
}

func blocked(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSpii:
		return true
	}
	return false
}
