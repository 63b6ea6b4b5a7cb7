package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/feichai0017/exam-solver/pkg/logger"
)

const (
	// MIMEType of uploaded PDF documents.
	MIMEType = "application/pdf"
	// PageMIMEType of every rendered page.
	PageMIMEType = "image/jpeg"

	// RenderScale is applied to the page's point size: one PDF point is
	// 1/72 inch, so pages render at 144 DPI.
	RenderScale   = 2
	pointsPerInch = 72
)

// Page is one rendered page of a source PDF.
type Page struct {
	Number   int
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// RasterizerConfig 渲染配置
type RasterizerConfig struct {
	// Instances bounds how many PDFs render at the same time.
	Instances   int
	JPEGQuality int
}

// Rasterizer renders PDF pages to JPEG through PDFium compiled to
// WebAssembly, so no native library is needed.
type Rasterizer struct {
	pool    pdfium.Pool
	quality int
	logger  logger.Logger
}

func NewRasterizer(cfg RasterizerConfig, log logger.Logger) (*Rasterizer, error) {
	instances := cfg.Instances
	if instances <= 0 {
		instances = 1
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  instances,
		MaxTotal: instances,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init pdfium: %w", err)
	}
	return &Rasterizer{pool: pool, quality: quality, logger: log}, nil
}

func (r *Rasterizer) Close() error {
	return r.pool.Close()
}

// RenderPages renders every page of data in document order at RenderScale.
// A file PDFium cannot open is rewritten by pdfcpu and tried once more.
func (r *Rasterizer) RenderPages(ctx context.Context, data []byte) ([]Page, error) {
	instance, err := r.pool.GetInstanceWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		repaired, rerr := Repair(data)
		if rerr != nil {
			return nil, fmt.Errorf("failed to open PDF: %w", err)
		}
		r.logger.Debug("Opening repaired PDF", logger.Error(err))
		if doc, err = instance.OpenDocument(&requests.OpenDocument{File: &repaired}); err != nil {
			return nil, fmt.Errorf("failed to open repaired PDF: %w", err)
		}
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if count.PageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages := make([]Page, 0, count.PageCount)
	for i := 0; i < count.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := r.renderPage(instance, doc.Document, i)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}

	r.logger.Debug("Rendered PDF pages", logger.Int("pages", len(pages)))
	return pages, nil
}

func (r *Rasterizer) renderPage(instance pdfium.Pdfium, doc references.FPDF_DOCUMENT, index int) (Page, error) {
	rendered, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: RenderScale * pointsPerInch,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{Document: doc, Index: index},
		},
	})
	if err != nil {
		return Page{}, err
	}
	// the bitmap lives in WebAssembly memory until cleanup
	defer rendered.Cleanup()

	var img image.Image = rendered.Result.Image
	if rendered.Result.HasTransparency {
		img = flatten(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return Page{}, fmt.Errorf("failed to encode page: %w", err)
	}
	return Page{
		Number:   index + 1,
		MIMEType: PageMIMEType,
		Data:     buf.Bytes(),
		Width:    rendered.Result.Width,
		Height:   rendered.Result.Height,
	}, nil
}

// flatten draws a transparent page over white paper.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	paper := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(paper, img, image.Pt(0, 0), 1.0)
}

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Repair rewrites data through pdfcpu in relaxed mode, rebuilding the
// cross-reference table and dropping unused objects.
func Repair(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, relaxedConfig()); err != nil {
		return nil, fmt.Errorf("failed to repair PDF: %w", err)
	}
	return out.Bytes(), nil
}
