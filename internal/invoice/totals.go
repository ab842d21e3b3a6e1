package invoice

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// Line is one priced invoice row.
type Line struct {
	Name     string
	Qty      float64
	Rate     float64
	Subtotal float64
	Tax      float64
	Total    float64
}

// Totals holds per-line and invoice-level amounts, rounded to paise.
type Totals struct {
	Lines      []Line
	Subtotal   float64
	CGST       float64
	SGST       float64
	Tax        float64
	GrandTotal float64
}

// ComputeTotals prices every line at CGST+SGST. All items must carry qty and rate.
func ComputeTotals(order entity.PartialOrder) (Totals, error) {
	var t Totals
	if len(order.Items) == 0 {
		return t, fmt.Errorf("order has no items")
	}
	for i, it := range order.Items {
		if !it.IsComplete() {
			return Totals{}, fmt.Errorf("item %d (%q) is missing qty or rate", i+1, it.Name)
		}
		sub := *it.Qty * *it.Rate
		tax := sub * constants.TotalTaxRate
		t.Lines = append(t.Lines, Line{
			Name:     strings.TrimSpace(it.Name),
			Qty:      *it.Qty,
			Rate:     *it.Rate,
			Subtotal: round2(sub),
			Tax:      round2(tax),
			Total:    round2(sub + tax),
		})
		t.Subtotal += sub
		t.Tax += tax
	}
	t.CGST = round2(t.Subtotal * constants.CGSTRate)
	t.SGST = round2(t.Subtotal * constants.SGSTRate)
	t.GrandTotal = round2(t.Subtotal + t.Tax)
	t.Subtotal = round2(t.Subtotal)
	t.Tax = round2(t.Tax)
	return t, nil
}

// FormatMoney renders an amount as "Rs. 1234.50".
func FormatMoney(v float64) string {
	return constants.CurrencyPrefix + " " + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatQty drops a trailing ".0" from whole quantities.
func FormatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
