package llm

import (
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// ToResult converts model fields into the adapter's result type.
// Model tags are mapped onto MissingField values; unknown tags are dropped.
func (f OrderFields) ToResult() entity.ExtractionResult {
	res := entity.ExtractionResult{Status: entity.ExtractionIncomplete}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "complete":
		res.Status = entity.ExtractionComplete
	case "error":
		res.Status = entity.ExtractionError
	}
	if f.Message != nil {
		res.Message = strings.TrimSpace(*f.Message)
	}

	if f.Data.Customer != nil {
		if c := strings.TrimSpace(*f.Data.Customer); c != "" {
			res.Data.Customer = &c
		}
	}
	for _, it := range f.Data.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		li := entity.LineItem{Name: name}
		if it.Qty != nil {
			q := *it.Qty
			li.Qty = &q
		}
		if it.Rate != nil {
			r := *it.Rate
			li.Rate = &r
		}
		res.Data.Items = append(res.Data.Items, li)
	}

	seen := map[constants.MissingField]bool{}
	for _, tag := range f.MissingFields {
		mf, ok := constants.ParseMissingTag(tag)
		if !ok || seen[mf] {
			continue
		}
		seen[mf] = true
		res.Missing = append(res.Missing, mf)
	}
	return res
}
