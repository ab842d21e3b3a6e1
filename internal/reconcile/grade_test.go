package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

// randomOrder builds orders covering every combination of present/absent fields.
func randomOrder(r *rand.Rand) entity.PartialOrder {
	var o entity.PartialOrder
	switch r.Intn(4) {
	case 0:
	case 1:
		o.Customer = str("   ")
	default:
		o.Customer = str(fmt.Sprintf("Customer %d", r.Intn(100)))
	}
	n := r.Intn(4)
	for i := 0; i < n; i++ {
		it := entity.LineItem{Name: fmt.Sprintf("item-%d", i)}
		if r.Intn(3) > 0 {
			it.Qty = f64(float64(r.Intn(5)))
		}
		if r.Intn(3) > 0 {
			it.Rate = f64(float64(r.Intn(100)))
		}
		o.Items = append(o.Items, it)
	}
	return o
}

func TestGrade_CompleteOrders(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		o := entity.PartialOrder{Customer: str("Ramesh")}
		for j := 0; j <= r.Intn(5); j++ {
			o.Items = append(o.Items, entity.LineItem{Name: "x", Qty: f64(float64(r.Intn(10))), Rate: f64(float64(r.Intn(10)))})
		}
		v := Grade(o)
		require.True(t, v.Complete(), "order %+v", o)
		require.Empty(t, v.Missing)
	}
}

func TestGrade_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		o := randomOrder(r)
		v := Grade(o)

		if o.CustomerName() == "" {
			require.True(t, v.Has(constants.MissingCustomer))
			require.Equal(t, entity.ExtractionIncomplete, v.Status)
		}
		if len(o.Items) == 0 {
			require.True(t, v.Has(constants.MissingItems))
			require.Equal(t, entity.ExtractionIncomplete, v.Status)
		}
		details := 0
		for _, m := range v.Missing {
			if m == constants.MissingItemDetails {
				details++
			}
		}
		require.LessOrEqual(t, details, 1)

		// pure: same input, same verdict
		require.Equal(t, v, Grade(o))
	}
}

func TestGrade_ZeroIsPresent(t *testing.T) {
	v := Grade(entity.PartialOrder{Customer: str("Ramesh"), Items: []entity.LineItem{{Name: "Sample", Qty: f64(0), Rate: f64(0)}}})
	assert.True(t, v.Complete())
}

func TestGrade_ItemDetailsOnce(t *testing.T) {
	v := Grade(entity.PartialOrder{
		Customer: str("Ramesh"),
		Items:    []entity.LineItem{{Name: "Rice"}, {Name: "Dal", Qty: f64(1)}, {Name: "Oil", Rate: f64(2)}},
	})
	assert.Equal(t, []constants.MissingField{constants.MissingItemDetails}, v.Missing)
}

func TestGrade_BlankItemNameIsIncomplete(t *testing.T) {
	v := Grade(entity.PartialOrder{Customer: str("Ramesh"), Items: []entity.LineItem{{Name: " ", Qty: f64(1), Rate: f64(1)}}})
	assert.False(t, v.Complete())
	assert.True(t, v.Has(constants.MissingItemDetails))
}

func TestMissingPrompt(t *testing.T) {
	header := "📝 I got some information, but I need a bit more:\n\n"
	footer := "\nPlease provide the missing details."

	cases := []struct {
		name    string
		missing []constants.MissingField
		want    string
	}{
		{"customer and details", []constants.MissingField{constants.MissingCustomer, constants.MissingItemDetails},
			"• Customer name\n• Item details (name, quantity, price)\n"},
		{"items suppresses hints", []constants.MissingField{constants.MissingItems, constants.MissingItemRate, constants.MissingItemQty},
			"• Item details (name, quantity, price)\n"},
		{"details suppresses hints", []constants.MissingField{constants.MissingItemDetails, constants.MissingItemRate},
			"• Item details (name, quantity, price)\n"},
		{"rate then qty hints", []constants.MissingField{constants.MissingItemQty, constants.MissingCustomer, constants.MissingItemRate},
			"• Customer name\n• Price/rate for some items\n• Quantity for some items\n"},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, header+tc.want+footer, MissingPrompt(tc.missing))
		})
	}
}
