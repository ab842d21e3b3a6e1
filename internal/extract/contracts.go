package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// Input is one inbound message, already classified.
type Input struct {
	Kind        constants.InputKind
	Text        string
	MediaURL    string
	ContentType string
}

// Adapter turns one input plus the pending order into an extraction result.
// prior may be nil. A returned error means nothing usable was produced.
type Adapter interface {
	Extract(ctx context.Context, in Input, prior *entity.PartialOrder) (entity.ExtractionResult, error)
}

// TextExtractor reads printed or handwritten text off an image.
type TextExtractor interface {
	ExtractImageText(ctx context.Context, data []byte, mimeType string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Media is a downloaded attachment.
type Media struct {
	Data        []byte
	ContentType string
}

// MediaFetcher downloads attachments referenced by a media URL.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) (Media, error)
}
