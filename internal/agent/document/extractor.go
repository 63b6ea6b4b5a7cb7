package document

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/feichai0017/exam-solver/internal/agent/document/pdf"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

// ErrNoValidPages is returned when no uploaded document yields a page.
var ErrNoValidPages = errors.New("no valid pages found in uploaded documents")

// 扩展名到 MIME 类型的映射
var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".tiff": "image/tiff",
	".pdf":  pdf.MIMEType,
}

// Renderer turns a PDF into ordered single pages.
type Renderer interface {
	RenderPages(ctx context.Context, data []byte) ([]pdf.Page, error)
}

// ImageNormalizer re-encodes a photographed page.
type ImageNormalizer interface {
	Normalize(data []byte) ([]byte, string, error)
}

// PageExtractor flattens uploaded documents into one ordered page list.
type PageExtractor struct {
	renderer Renderer
	images   ImageNormalizer
	logger   logger.Logger
}

type Option func(*PageExtractor)

// WithImageNormalizer preprocesses image uploads before they become pages.
func WithImageNormalizer(n ImageNormalizer) Option {
	return func(e *PageExtractor) { e.images = n }
}

func NewPageExtractor(renderer Renderer, log logger.Logger, opts ...Option) *PageExtractor {
	e := &PageExtractor{renderer: renderer, logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the pages of docs in upload order, PDF pages in document
// order. A document that cannot be rendered is skipped.
func (e *PageExtractor) Extract(ctx context.Context, docs []models.Document) ([]models.PageImage, error) {
	var pages []models.PageImage

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(doc.Data) == 0 {
			e.logger.Warn("Skipping empty document", logger.String("filename", doc.Filename))
			continue
		}

		mediaType := MediaType(doc)
		if mediaType != pdf.MIMEType {
			data, mt := e.normalize(doc, mediaType)
			pages = append(pages, models.PageImage{
				Index:      len(pages),
				SourceFile: doc.Filename,
				SourcePage: 1,
				MIMEType:   mt,
				Data:       data,
			})
			continue
		}

		rendered, err := e.renderer.RenderPages(ctx, doc.Data)
		if err != nil {
			e.logger.Warn("Skipping document that failed to render",
				logger.String("filename", doc.Filename),
				logger.Error(err),
			)
			continue
		}
		for _, p := range rendered {
			pages = append(pages, models.PageImage{
				Index:      len(pages),
				SourceFile: doc.Filename,
				SourcePage: p.Number,
				MIMEType:   p.MIMEType,
				Data:       p.Data,
			})
		}
	}

	if len(pages) == 0 {
		return nil, ErrNoValidPages
	}
	return pages, nil
}

// normalize falls back to the upload as-is when the image cannot be
// processed; the model may still read it.
func (e *PageExtractor) normalize(doc models.Document, mediaType string) ([]byte, string) {
	if e.images == nil || !strings.HasPrefix(mediaType, "image/") {
		return doc.Data, mediaType
	}
	data, mt, err := e.images.Normalize(doc.Data)
	if err != nil {
		e.logger.Debug("Image left unprocessed",
			logger.String("filename", doc.Filename),
			logger.Error(err),
		)
		return doc.Data, mediaType
	}
	return data, mt
}

// MediaType resolves a document's media type from its declared type, then
// its extension, then its content.
func MediaType(doc models.Document) string {
	if declared, _, err := mime.ParseMediaType(doc.ContentType); err == nil &&
		declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if mt, ok := extToMIME[strings.ToLower(filepath.Ext(doc.Filename))]; ok {
		return mt
	}
	detected, _, _ := mime.ParseMediaType(http.DetectContentType(doc.Data))
	return detected
}
