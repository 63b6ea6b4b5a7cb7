// Package image prepares photographed exam pages for the model.
package image

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/feichai0017/exam-solver/pkg/logger"
)

const normalizedMIMEType = "image/jpeg"

// NormalizerConfig 图片预处理配置
type NormalizerConfig struct {
	MaxDimension int
	Enhance      bool
	JPEGQuality  int
}

// Normalizer decodes a page photo with EXIF orientation applied, runs the
// preprocessing chain and re-encodes it as JPEG.
type Normalizer struct {
	preprocessors []Preprocessor
	quality       int
	logger        logger.Logger
}

func NewNormalizer(cfg NormalizerConfig, log logger.Logger) *Normalizer {
	chain := []Preprocessor{NewFitProcessor(cfg.MaxDimension)}
	if cfg.Enhance {
		chain = append(chain,
			NewContrastNormalizationProcessor(15),
			NewSharpenProcessor(0.6),
		)
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &Normalizer{preprocessors: chain, quality: quality, logger: log.Named("image")}
}

// WithPreprocessors replaces the preprocessing chain.
func (n *Normalizer) WithPreprocessors(p ...Preprocessor) *Normalizer {
	n.preprocessors = p
	return n
}

// Normalize returns the processed image and its media type. Formats the
// decoder does not know are returned unchanged with an error.
func (n *Normalizer) Normalize(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	for _, p := range n.preprocessors {
		if img, err = p.Process(img); err != nil {
			return nil, "", fmt.Errorf("failed to preprocess image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	n.logger.Debug("Image normalized",
		logger.Int("width", img.Bounds().Dx()),
		logger.Int("height", img.Bounds().Dy()),
		logger.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), normalizedMIMEType, nil
}
