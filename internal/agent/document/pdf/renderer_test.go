package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/internal/agent/document/pdf/pdftest"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

func newTestRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := NewRasterizer(RasterizerConfig{Instances: 1}, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRasterizerRendersPagesInOrderAtDoubleScale(t *testing.T) {
	r := newTestRasterizer(t)

	pages, err := r.RenderPages(context.Background(), pdftest.Build("Question one", "Question two", "Question three"))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, PageMIMEType, p.MIMEType)
		// fixtures use a 612x792 pt letter media box
		assert.InDelta(t, 612*RenderScale, p.Width, 1)
		assert.InDelta(t, 792*RenderScale, p.Height, 1)

		img, err := imaging.Decode(bytes.NewReader(p.Data))
		require.NoError(t, err)
		assert.Equal(t, p.Width, img.Bounds().Dx())
		assert.Equal(t, p.Height, img.Bounds().Dy())
	}
}

func TestRasterizerRendersPagesWithoutText(t *testing.T) {
	r := newTestRasterizer(t)

	pages, err := r.RenderPages(context.Background(), pdftest.Build("", ""))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	for _, p := range pages {
		assert.Equal(t, PageMIMEType, p.MIMEType)
		assert.NotEmpty(t, p.Data)
	}
}

func TestRasterizerOpensBrokenCrossReference(t *testing.T) {
	r := newTestRasterizer(t)

	data := pdftest.Build("Only page")
	idx := bytes.LastIndex(data, []byte("startxref\n"))
	require.Positive(t, idx)
	broken := append(append([]byte{}, data[:idx]...), []byte("startxref\n999999\n%%EOF\n")...)

	pages, err := r.RenderPages(context.Background(), broken)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestRasterizerRejectsGarbage(t *testing.T) {
	r := newTestRasterizer(t)
	_, err := r.RenderPages(context.Background(), []byte("definitely not a pdf"))
	require.Error(t, err)
}

func TestRasterizerStopsWhenCancelled(t *testing.T) {
	r := newTestRasterizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderPages(ctx, pdftest.Build("a"))
	require.Error(t, err)
}

func TestRepairKeepsPages(t *testing.T) {
	repaired, err := Repair(pdftest.Build("a", "b"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(repaired), "%PDF-"))

	n, err := CountPages(repaired)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Repair([]byte("nope"))
	require.Error(t, err)
}

func TestFlattenPaintsTransparencyWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(1, 0, color.NRGBA{A: 255})

	out := flatten(img)
	r, g, b, _ := out.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
	r, g, b, _ = out.At(1, 0).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})
}

func TestCountPages(t *testing.T) {
	n, err := CountPages(pdftest.Build("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = CountPages([]byte("garbage"))
	require.Error(t, err)
}
