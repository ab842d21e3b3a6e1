package reconcile

import (
	"errors"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// OutcomeKind is what the state machine should do with a turn's order.
type OutcomeKind int

const (
	// OutcomeFailed: extraction failed, nothing changes.
	OutcomeFailed OutcomeKind = iota
	// OutcomeIncomplete: keep Order pending and ask for Missing.
	OutcomeIncomplete
	// OutcomeComplete: Order is ready for the renderer.
	OutcomeComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeComplete:
		return "complete"
	default:
		return "failed"
	}
}

type Outcome struct {
	Kind    OutcomeKind
	Order   entity.PartialOrder
	Missing []constants.MissingField
	// Err is set for OutcomeFailed and wraps common.ErrUpstream or the adapter's error.
	Err error
}

var errAdapterReported = errors.New("extraction reported an error")

// Reconcile re-grades the adapter output. The adapter folds earlier pending
// context into its data, so the candidate is taken as-is.
// On an incomplete grade the adapter's qty/rate hints are kept next to the graded tags.
func Reconcile(res entity.ExtractionResult, err error) Outcome {
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: common.ExtractionFailed(err)}
	}
	if res.Status == entity.ExtractionError {
		cause := errAdapterReported
		if res.Message != "" {
			cause = errors.New(res.Message)
		}
		return Outcome{Kind: OutcomeFailed, Err: common.ExtractionFailed(cause)}
	}

	candidate := *res.Data.Clone()
	v := Grade(candidate)
	if v.Complete() {
		return Outcome{Kind: OutcomeComplete, Order: candidate}
	}

	missing := append([]constants.MissingField(nil), v.Missing...)
	for _, hint := range res.Missing {
		if (hint == constants.MissingItemQty || hint == constants.MissingItemRate) && !containsField(missing, hint) {
			missing = append(missing, hint)
		}
	}
	return Outcome{Kind: OutcomeIncomplete, Order: candidate, Missing: missing}
}
