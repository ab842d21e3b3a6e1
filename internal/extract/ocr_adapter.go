package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/billbot/internal/ocr"
)

// OCRAdapter exposes the tesseract extractor as a TextExtractor.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor, _ *slog.Logger) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) ExtractImageText(ctx context.Context, data []byte, mimeType string) (TextExtractionResult, error) {
	r, err := a.e.ExtractImage(ctx, data, mimeType)
	return TextExtractionResult{
		Text:       r.Text,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}
