package solve

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/internal/agent/document"
	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/agent/document/pdf/pdftest"
	"github.com/feichai0017/exam-solver/internal/agent/inference"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// ollamaServer answers every generate call with reply and counts the
// images it receives.
func ollamaServer(t *testing.T, reply string, calls, images *atomic.Int32) *inference.OllamaModel {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls.Add(1)
		images.Add(int32(len(body.Images)))
		_ = json.NewEncoder(w).Encode(inference.OllamaResponse{Response: reply, Done: true})
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default().Inference
	cfg.Provider = "ollama"
	cfg.Model = "llava"
	cfg.Endpoint = srv.URL
	return inference.NewOllamaModel(cfg, logger.NewTestLogger())
}

func pngPage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	img.Set(3, 3, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSolvePageUsesPlaceholderWhenOllamaAnswersNothing(t *testing.T) {
	var calls, images atomic.Int32
	s := NewPageSolver(ollamaServer(t, "", &calls, &images), logger.NewTestLogger())

	res := s.SolvePage(context.Background(), models.PageImage{MIMEType: "image/png", Data: pngPage(t)}, 2)
	require.False(t, res.Failed(), "%v", res.Err)
	assert.Equal(t, NoTextPlaceholder, res.Text)
	assert.Equal(t, "## Page 2\n\n"+NoTextPlaceholder, Section(res))
	assert.Equal(t, int32(1), calls.Load())
}

func TestScannedPDFPagesReachTheModelAsImages(t *testing.T) {
	log := logger.NewTestLogger()
	rasterizer, err := pdf.NewRasterizer(pdf.RasterizerConfig{Instances: 1}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rasterizer.Close() })

	// pages without a text layer, as a scanner would produce
	pages, err := document.NewPageExtractor(rasterizer, log).Extract(context.Background(), []models.Document{
		{Filename: "scan.pdf", ContentType: "application/pdf", Data: pdftest.Build("", "")},
	})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	var calls, images atomic.Int32
	s := NewPageSolver(ollamaServer(t, "x = 4", &calls, &images), log)
	for i, p := range pages {
		res := s.SolvePage(context.Background(), p, i+1)
		require.False(t, res.Failed(), "%v", res.Err)
		assert.Equal(t, "x = 4", res.Text)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), images.Load())
}
