package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// OllamaResponse 定义 Ollama API 响应结构
type OllamaResponse struct {
	Response        string `json:"response"`
	Model           string `json:"model"`
	Done            bool   `json:"done"`
	TotalDuration   int64  `json:"total_duration,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	Error           string `json:"error,omitempty"`
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// OllamaModel talks to a local Ollama server. Every part must be an image;
// it is re-encoded to JPEG.
type OllamaModel struct {
	endpoint   string
	cfg        config.InferenceConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewOllamaModel(cfg config.InferenceConfig, log logger.Logger) *OllamaModel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaModel{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

func (c *OllamaModel) Generate(ctx context.Context, req Request) (string, error) {
	body := ollamaRequest{
		Model:  c.cfg.Model,
		System: req.SystemInstruction,
		Prompt: req.Prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": c.cfg.Temperature,
			"top_p":       c.cfg.TopP,
			"top_k":       c.cfg.TopK,
			"num_predict": c.cfg.MaxOutputTokens,
		},
	}

	for i, part := range req.Parts {
		if !strings.HasPrefix(part.MIMEType, "image/") {
			return "", fmt.Errorf("part %d (%s): %w", i+1, part.MIMEType, ErrUnsupportedPart)
		}
		img, err := encodeJPEG(part.Data)
		if err != nil {
			return "", fmt.Errorf("part %d: %w", i+1, err)
		}
		body.Images = append(body.Images, img)
	}

	reqData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(reqData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(msg))
	}

	var result OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	c.logger.Debug("Ollama generation finished",
		logger.String("model", result.Model),
		logger.Int("eval_count", result.EvalCount),
	)

	return cleanText(result.Response), nil
}

func (c *OllamaModel) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// encodeJPEG normalizes any decodable image to base64 JPEG, honouring
// EXIF orientation from phone cameras.
func encodeJPEG(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
