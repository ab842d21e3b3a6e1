package reconcile

import (
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
)

// MissingPrompt renders the fixed-order checklist sent back to the user.
// Qty and rate hints are only listed when no generic item tag is present.
func MissingPrompt(missing []constants.MissingField) string {
	var b strings.Builder
	b.WriteString("📝 I got some information, but I need a bit more:\n\n")

	if containsField(missing, constants.MissingCustomer) {
		b.WriteString("• Customer name\n")
	}
	generic := containsField(missing, constants.MissingItems) || containsField(missing, constants.MissingItemDetails)
	if generic {
		b.WriteString("• Item details (name, quantity, price)\n")
	} else {
		if containsField(missing, constants.MissingItemRate) {
			b.WriteString("• Price/rate for some items\n")
		}
		if containsField(missing, constants.MissingItemQty) {
			b.WriteString("• Quantity for some items\n")
		}
	}

	b.WriteString("\nPlease provide the missing details.")
	return b.String()
}
