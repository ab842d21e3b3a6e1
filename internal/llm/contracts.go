package llm

import (
	"context"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// ItemFields is one line item as the model reports it.
type ItemFields struct {
	Name string   `json:"name"`
	Qty  *float64 `json:"qty"`
	Rate *float64 `json:"rate"`
}

// OrderData is the "data" object of the model response.
type OrderData struct {
	Customer *string      `json:"customer"`
	Items    []ItemFields `json:"items"`
}

// OrderFields is the normalized shape we want from the LLM.
type OrderFields struct {
	Status        string    `json:"status"` // complete | incomplete | error
	Data          OrderData `json:"data"`
	MissingFields []string  `json:"missing_fields,omitempty"`
	Message       *string   `json:"message,omitempty"`
}

type OrderRequest struct {
	Kind constants.InputKind

	// Text is the message body or an audio transcript.
	Text string

	// ImageDataURL is set for IMAGE inputs; OCRHint is optional Tesseract text for the same image.
	ImageDataURL string
	OCRHint      string

	// Prior is the pending order from earlier turns, folded in by the model.
	Prior *entity.PartialOrder
}

// OrderExtractor is the interface the extraction adapter depends on.
type OrderExtractor interface {
	ExtractOrder(ctx context.Context, req OrderRequest) (OrderFields, []byte /*rawJSON*/, error)
}

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (string, error)
}
