package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/llm"
)

// LLMAdapter is the Adapter backed by a language model.
// Images go to the vision model (with an optional OCR hint), voice notes are
// transcribed first, and text goes straight to the model.
type LLMAdapter struct {
	extractor   llm.OrderExtractor
	transcriber llm.Transcriber
	fetcher     MediaFetcher
	ocr         TextExtractor
	maxMB       int
	logger      *slog.Logger
}

type AdapterOption func(*LLMAdapter)

// WithOCR adds a Tesseract pass whose text is sent as a hint with images.
func WithOCR(t TextExtractor) AdapterOption {
	return func(a *LLMAdapter) { a.ocr = t }
}

// WithMaxMediaMB caps image size before encoding.
func WithMaxMediaMB(mb int) AdapterOption {
	return func(a *LLMAdapter) { a.maxMB = mb }
}

func NewLLMAdapter(extractor llm.OrderExtractor, transcriber llm.Transcriber, fetcher MediaFetcher, logger *slog.Logger, opts ...AdapterOption) *LLMAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &LLMAdapter{
		extractor:   extractor,
		transcriber: transcriber,
		fetcher:     fetcher,
		maxMB:       constants.MaxMediaMBDefault,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *LLMAdapter) Extract(ctx context.Context, in Input, prior *entity.PartialOrder) (entity.ExtractionResult, error) {
	start := time.Now()
	req := llm.OrderRequest{Kind: in.Kind, Text: strings.TrimSpace(in.Text), Prior: prior}

	switch in.Kind {
	case constants.IMAGE:
		media, err := a.fetch(ctx, in)
		if err != nil {
			return entity.ExtractionResult{}, err
		}
		mimeType := firstNonEmpty(in.ContentType, media.ContentType, constants.DefaultImageMIME)
		if req.ImageDataURL, err = llm.ImageDataURL(media.Data, mimeType, a.maxMB); err != nil {
			return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
		if a.ocr != nil {
			if r, err := a.ocr.ExtractImageText(ctx, media.Data, mimeType); err != nil {
				a.logger.Warn("extract.ocr_hint.failed", "error", err)
			} else {
				req.OCRHint = r.Text
			}
		}
	case constants.AUDIO:
		if a.transcriber == nil {
			return entity.ExtractionResult{}, fmt.Errorf("%w: voice notes are not supported", common.ErrInvalidInput)
		}
		media, err := a.fetch(ctx, in)
		if err != nil {
			return entity.ExtractionResult{}, err
		}
		mimeType := firstNonEmpty(in.ContentType, media.ContentType, constants.DefaultAudioMIME)
		text, err := a.transcriber.Transcribe(ctx, media.Data, "voice."+constants.ExtForMIME(mimeType), mimeType)
		if err != nil {
			return entity.ExtractionResult{}, fmt.Errorf("%w: transcribe: %v", common.ErrUpstream, err)
		}
		a.logger.Debug("extract.transcribed", "text_len", len(text))
		req.Text = text
	default:
		req.Kind = constants.TEXT
		if req.Text == "" {
			return entity.ExtractionResult{}, common.ErrNoInput
		}
	}

	fields, _, err := a.extractor.ExtractOrder(ctx, req)
	if err != nil {
		a.logger.Error("extract.failed", "kind", req.Kind, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	res := fields.ToResult()
	a.logger.Info("extract.ok",
		"kind", req.Kind,
		"status", res.Status,
		"items", len(res.Data.Items),
		"missing", res.Missing,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (a *LLMAdapter) fetch(ctx context.Context, in Input) (Media, error) {
	if a.fetcher == nil || strings.TrimSpace(in.MediaURL) == "" {
		return Media{}, common.ErrNoInput
	}
	return a.fetcher.Fetch(ctx, in.MediaURL)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
