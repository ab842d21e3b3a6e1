// Package reconcile decides whether an extracted order is complete and what
// to ask for when it is not. The extraction adapter's own verdict is ignored.
package reconcile

import (
	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// Verdict is the authoritative completeness grade of one order.
type Verdict struct {
	Status  entity.ExtractionStatus
	Missing []constants.MissingField
}

// Complete reports whether the order can be invoiced.
func (v Verdict) Complete() bool {
	return v.Status == entity.ExtractionComplete
}

// Has reports whether f is in the missing set.
func (v Verdict) Has(f constants.MissingField) bool {
	return containsField(v.Missing, f)
}

// Grade checks customer, item presence and per-item completeness.
// It is a pure function of the order.
func Grade(o entity.PartialOrder) Verdict {
	var missing []constants.MissingField
	if o.CustomerName() == "" {
		missing = append(missing, constants.MissingCustomer)
	}
	if len(o.Items) == 0 {
		missing = append(missing, constants.MissingItems)
	}
	for _, it := range o.Items {
		if !it.IsComplete() {
			missing = append(missing, constants.MissingItemDetails)
			break
		}
	}
	if len(missing) > 0 {
		return Verdict{Status: entity.ExtractionIncomplete, Missing: missing}
	}
	return Verdict{Status: entity.ExtractionComplete}
}

func containsField(list []constants.MissingField, f constants.MissingField) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
