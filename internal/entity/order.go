package entity

import (
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
)

// LineItem is one ordered product. Qty and Rate are nil when unknown; zero is a value.
type LineItem struct {
	Name string   `json:"name"`
	Qty  *float64 `json:"qty"`
	Rate *float64 `json:"rate"`
}

// IsComplete reports whether name, qty and rate are all present.
func (it LineItem) IsComplete() bool {
	return strings.TrimSpace(it.Name) != "" && it.Qty != nil && it.Rate != nil
}

// PartialOrder is an order as known so far. Items keep mention order.
type PartialOrder struct {
	Customer *string    `json:"customer"`
	Items    []LineItem `json:"items"`
}

// CustomerName returns the trimmed customer or "".
func (o *PartialOrder) CustomerName() string {
	if o == nil || o.Customer == nil {
		return ""
	}
	return strings.TrimSpace(*o.Customer)
}

// Clone deep-copies o.
func (o *PartialOrder) Clone() *PartialOrder {
	if o == nil {
		return nil
	}
	c := &PartialOrder{Customer: cloneString(o.Customer)}
	if o.Items != nil {
		c.Items = make([]LineItem, len(o.Items))
		for i, it := range o.Items {
			c.Items[i] = LineItem{Name: it.Name, Qty: cloneFloat(it.Qty), Rate: cloneFloat(it.Rate)}
		}
	}
	return c
}

// ExtractionStatus is the adapter's own verdict. It is advisory only.
type ExtractionStatus string

const (
	ExtractionComplete   ExtractionStatus = "COMPLETE"
	ExtractionIncomplete ExtractionStatus = "INCOMPLETE"
	ExtractionError      ExtractionStatus = "ERROR"
)

// ExtractionResult is what the extraction adapter returns for one input.
type ExtractionResult struct {
	Status  ExtractionStatus         `json:"status"`
	Data    PartialOrder             `json:"data"`
	Missing []constants.MissingField `json:"missing_fields,omitempty"`
	Message string                   `json:"message,omitempty"`
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
