package entity

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a ledger row for a rendered invoice.
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	Identity  string    `json:"identity"`
	Number    string    `json:"number"`
	Customer  string    `json:"customer"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	ItemCount int       `json:"item_count"`
	Subtotal  float64   `json:"subtotal"`
	CGST      float64   `json:"cgst"`
	SGST      float64   `json:"sgst"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
