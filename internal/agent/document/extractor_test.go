package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

type fakeRenderer struct {
	pages map[string]int
}

func (f fakeRenderer) RenderPages(_ context.Context, data []byte) ([]pdf.Page, error) {
	n, ok := f.pages[string(data)]
	if !ok {
		return nil, errors.New("corrupt pdf")
	}
	out := make([]pdf.Page, n)
	for i := range out {
		out[i] = pdf.Page{Number: i + 1, MIMEType: pdf.PageMIMEType, Data: []byte{byte(i)}}
	}
	return out, nil
}

func TestExtractOrdersPagesAcrossDocuments(t *testing.T) {
	log := logger.NewTestLogger()
	e := NewPageExtractor(fakeRenderer{pages: map[string]int{"two-pager": 2}}, log)

	pages, err := e.Extract(context.Background(), []models.Document{
		{Filename: "paper.pdf", ContentType: "application/pdf", Data: []byte("two-pager")},
		{Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	})
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, "paper.pdf", pages[0].SourceFile)
	assert.Equal(t, 1, pages[0].SourcePage)
	assert.Equal(t, 2, pages[1].SourcePage)
	assert.Equal(t, "photo.jpg", pages[2].SourceFile)
	assert.Equal(t, "image/jpeg", pages[2].MIMEType)
	for i, p := range pages {
		assert.Equal(t, i, p.Index)
	}
}

func TestExtractSkipsFailedDocuments(t *testing.T) {
	log := logger.NewTestLogger()
	e := NewPageExtractor(fakeRenderer{}, log)

	pages, err := e.Extract(context.Background(), []models.Document{
		{Filename: "broken.pdf", ContentType: "application/pdf", Data: []byte("garbage")},
		{Filename: "scan.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "scan.png", pages[0].SourceFile)
	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, 1, log.Count("WARN"))
}

func TestExtractWithNoUsablePages(t *testing.T) {
	e := NewPageExtractor(fakeRenderer{}, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), []models.Document{
		{Filename: "broken.pdf", ContentType: "application/pdf", Data: []byte("garbage")},
		{Filename: "empty.png", ContentType: "image/png"},
	})
	assert.ErrorIs(t, err, ErrNoValidPages)

	_, err = e.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoValidPages)
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "image/png", MediaType(models.Document{ContentType: "image/png; charset=binary"}))
	assert.Equal(t, pdf.MIMEType, MediaType(models.Document{Filename: "A.PDF", ContentType: "application/octet-stream"}))
	assert.Equal(t, pdf.MIMEType, MediaType(models.Document{Filename: "upload", Data: []byte("%PDF-1.4\n")}))
}

type stubNormalizer struct {
	fail bool
}

func (s stubNormalizer) Normalize(data []byte) ([]byte, string, error) {
	if s.fail {
		return nil, "", errors.New("unknown format")
	}
	return append([]byte("norm:"), data...), "image/jpeg", nil
}

func TestExtractNormalizesImagesOnly(t *testing.T) {
	log := logger.NewTestLogger()
	e := NewPageExtractor(fakeRenderer{pages: map[string]int{"one": 1}}, log, WithImageNormalizer(stubNormalizer{}))

	pages, err := e.Extract(context.Background(), []models.Document{
		{Filename: "paper.pdf", ContentType: "application/pdf", Data: []byte("one")},
		{Filename: "scan.png", ContentType: "image/png", Data: []byte("px")},
	})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, pdf.PageMIMEType, pages[0].MIMEType)
	assert.Equal(t, []byte{0}, pages[0].Data, "rendered pages skip normalization")
	assert.Equal(t, "image/jpeg", pages[1].MIMEType)
	assert.Equal(t, "norm:px", string(pages[1].Data))

	e = NewPageExtractor(fakeRenderer{}, log, WithImageNormalizer(stubNormalizer{fail: true}))
	pages, err = e.Extract(context.Background(), []models.Document{
		{Filename: "scan.heic", ContentType: "image/heic", Data: []byte("raw")},
	})
	require.NoError(t, err)
	assert.Equal(t, "image/heic", pages[0].MIMEType)
	assert.Equal(t, "raw", string(pages[0].Data))
}
