package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func TestOrderFields_ToResult(t *testing.T) {
	f := OrderFields{
		Status: "COMPLETE",
		Data: OrderData{
			Customer: str("  "),
			Items: []ItemFields{
				{Name: " Rice ", Qty: f64(10), Rate: nil},
				{Name: " ", Qty: f64(1), Rate: f64(1)},
				{Name: "Salt", Qty: f64(0), Rate: f64(0)},
			},
		},
		MissingFields: []string{"customer", "item_1_rate", "item_2_rate", "something else"},
	}
	res := f.ToResult()

	assert.Equal(t, entity.ExtractionComplete, res.Status)
	assert.Nil(t, res.Data.Customer)
	require.Len(t, res.Data.Items, 2)
	assert.Equal(t, "Rice", res.Data.Items[0].Name)
	assert.Nil(t, res.Data.Items[0].Rate)
	assert.True(t, res.Data.Items[1].IsComplete())
	assert.Equal(t, []constants.MissingField{constants.MissingCustomer, constants.MissingItemRate}, res.Missing)
}

func TestOrderFields_ToResultStatus(t *testing.T) {
	assert.Equal(t, entity.ExtractionError, OrderFields{Status: "error", Message: str("bad")}.ToResult().Status)
	assert.Equal(t, "bad", OrderFields{Status: "error", Message: str(" bad ")}.ToResult().Message)
	assert.Equal(t, entity.ExtractionIncomplete, OrderFields{Status: "whatever"}.ToResult().Status)
}
