package constants

import "strings"

// MissingField tags what an order still needs.
type MissingField string

const (
	MissingCustomer    MissingField = "customer"
	MissingItems       MissingField = "items"
	MissingItemDetails MissingField = "item details"
	MissingItemQty     MissingField = "item qty"
	MissingItemRate    MissingField = "item rate"
)

// ParseMissingTag maps a tag reported by the model ("customer", "item_2_rate", ...)
// onto a MissingField. Unknown tags return false.
func ParseMissingTag(tag string) (MissingField, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	switch {
	case t == "":
		return "", false
	case t == "customer" || t == "customer_name":
		return MissingCustomer, true
	case t == "items":
		return MissingItems, true
	case t == "item_details":
		return MissingItemDetails, true
	case strings.HasPrefix(t, "item") && (strings.HasSuffix(t, "_rate") || strings.HasSuffix(t, "_price")):
		return MissingItemRate, true
	case strings.HasPrefix(t, "item") && (strings.HasSuffix(t, "_qty") || strings.HasSuffix(t, "_quantity")):
		return MissingItemQty, true
	case strings.HasPrefix(t, "item"):
		return MissingItemDetails, true
	}
	return "", false
}
