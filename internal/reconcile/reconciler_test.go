package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

func TestReconcile_CompleteScenario(t *testing.T) {
	res := entity.ExtractionResult{
		Status: entity.ExtractionIncomplete, // adapter verdict is not trusted
		Data:   entity.PartialOrder{Customer: str("Ramesh"), Items: []entity.LineItem{{Name: "Rice", Qty: f64(10), Rate: f64(50)}}},
	}
	out := Reconcile(res, nil)
	require.Equal(t, OutcomeComplete, out.Kind)
	assert.Empty(t, out.Missing)
	for _, it := range out.Order.Items {
		assert.NotNil(t, it.Qty)
		assert.NotNil(t, it.Rate)
	}
}

func TestReconcile_IncompleteScenario(t *testing.T) {
	res := entity.ExtractionResult{
		Status: entity.ExtractionComplete, // adapter claims complete; regrade says otherwise
		Data:   entity.PartialOrder{Items: []entity.LineItem{{Name: "Rice", Qty: f64(10)}}},
	}
	out := Reconcile(res, nil)
	require.Equal(t, OutcomeIncomplete, out.Kind)
	assert.Subset(t, out.Missing, []constants.MissingField{constants.MissingCustomer, constants.MissingItemDetails})
	assert.Equal(t, res.Data, out.Order)
}

func TestReconcile_KeepsAdvisoryHints(t *testing.T) {
	res := entity.ExtractionResult{
		Status:  entity.ExtractionIncomplete,
		Data:    entity.PartialOrder{Items: []entity.LineItem{{Name: "Rice", Qty: f64(10), Rate: f64(50)}}},
		Missing: []constants.MissingField{constants.MissingCustomer, constants.MissingItemRate, constants.MissingItemRate, constants.MissingItems},
	}
	out := Reconcile(res, nil)
	require.Equal(t, OutcomeIncomplete, out.Kind)
	// items is not advisory; only qty/rate hints are carried over
	assert.Equal(t, []constants.MissingField{constants.MissingCustomer, constants.MissingItemRate}, out.Missing)
}

func TestReconcile_CompleteDropsHints(t *testing.T) {
	res := entity.ExtractionResult{
		Data:    entity.PartialOrder{Customer: str("R"), Items: []entity.LineItem{{Name: "Rice", Qty: f64(1), Rate: f64(1)}}},
		Missing: []constants.MissingField{constants.MissingItemRate},
	}
	out := Reconcile(res, nil)
	assert.Equal(t, OutcomeComplete, out.Kind)
	assert.Empty(t, out.Missing)
}

func TestReconcile_Failures(t *testing.T) {
	out := Reconcile(entity.ExtractionResult{}, errors.New("network down"))
	require.Equal(t, OutcomeFailed, out.Kind)
	assert.True(t, common.HasCode(out.Err, common.CodeExtractionFailed))
	assert.Contains(t, out.Err.Error(), "network down")

	out = Reconcile(entity.ExtractionResult{Status: entity.ExtractionError, Message: "No input provided",
		Data: entity.PartialOrder{Customer: str("ignored")}}, nil)
	require.Equal(t, OutcomeFailed, out.Kind)
	assert.Nil(t, out.Order.Customer)
	assert.Contains(t, out.Err.Error(), "No input provided")
}

func TestReconcile_DoesNotAliasInput(t *testing.T) {
	res := entity.ExtractionResult{Data: entity.PartialOrder{Items: []entity.LineItem{{Name: "Rice"}}}}
	out := Reconcile(res, nil)
	out.Order.Items[0].Name = "changed"
	assert.Equal(t, "Rice", res.Data.Items[0].Name)
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "incomplete", OutcomeIncomplete.String())
	assert.Equal(t, "complete", OutcomeComplete.String())
}
