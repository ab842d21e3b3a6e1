package conversation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/extract"
	"github.com/joseph-ayodele/billbot/internal/invoice"
	"github.com/joseph-ayodele/billbot/internal/reconcile"
)

// takeOrder runs extraction and grading, then either parks the order as
// pending or renders it. A failed render keeps the order pending so the next
// message retries it.
func (m *Machine) takeOrder(ctx context.Context, log *slog.Logger, u *entity.User, in Inbound) (Reply, error) {
	input := extract.Input{
		Kind:        constants.ClassifyMedia(in.MediaURL, in.MediaContentType),
		Text:        in.Text,
		MediaURL:    in.MediaURL,
		ContentType: in.MediaContentType,
	}

	tctx, cancel := common.WithTimeout(ctx, m.turnTimeout)
	defer cancel()

	res, err := m.adapter.Extract(tctx, input, u.PendingOrder.Clone())
	out := reconcile.Reconcile(res, err)
	log.Info("conversation.order.graded", "kind", input.Kind, "outcome", out.Kind, "missing", out.Missing)

	switch out.Kind {
	case reconcile.OutcomeIncomplete:
		order := out.Order
		err := m.update(ctx, u.Identity, entity.UserUpdate{
			State:        statePtr(constants.StateAwaitingInfo),
			SetPending:   true,
			PendingOrder: &order,
		})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: reconcile.MissingPrompt(out.Missing)}, nil

	case reconcile.OutcomeComplete:
		return m.complete(tctx, ctx, log, u, in, out.Order)
	}

	log.Warn("conversation.order.extraction_failed", "error", out.Err)
	return Reply{Text: replyExtractionFailed(out.Err)}, nil
}

// complete renders under the turn deadline (rctx) but persists with the
// request context so a slow render does not block the state write.
func (m *Machine) complete(rctx, ctx context.Context, log *slog.Logger, u *entity.User, in Inbound, order entity.PartialOrder) (Reply, error) {
	art, err := m.renderer.Render(rctx, order, u.Company)
	if err != nil {
		rerr := common.RenderFailed(err)
		log.Error("conversation.order.render_failed", "error", rerr)
		uerr := m.update(ctx, u.Identity, entity.UserUpdate{
			State:        statePtr(constants.StateAwaitingInfo),
			SetPending:   true,
			PendingOrder: &order,
		})
		if uerr != nil {
			return Reply{}, uerr
		}
		return Reply{Text: replyRenderFailed(rerr)}, nil
	}

	if err := m.update(ctx, u.Identity, entity.UserUpdate{State: statePtr(constants.StateReady), SetPending: true}); err != nil {
		return Reply{}, err
	}
	m.record(ctx, log, u.Identity, art)

	url := m.link(in, art.Filename)
	log.Info("conversation.order.invoiced", "number", art.Number, "filename", art.Filename)
	return Reply{
		Text:     replyInvoiceReady(art.Customer, url),
		Document: &Document{URL: url, Filename: art.Filename, Path: art.Path},
	}, nil
}

// record adds the invoice to the ledger. Failures are logged only; the
// invoice file already exists.
func (m *Machine) record(ctx context.Context, log *slog.Logger, identity string, art invoice.Artifact) {
	if m.invoices == nil {
		return
	}
	inv := &entity.Invoice{
		ID:        uuid.New(),
		Identity:  identity,
		Number:    art.Number,
		Customer:  art.Customer,
		Filename:  art.Filename,
		Path:      art.Path,
		ItemCount: len(art.Totals.Lines),
		Subtotal:  art.Totals.Subtotal,
		CGST:      art.Totals.CGST,
		SGST:      art.Totals.SGST,
		Total:     art.Totals.GrandTotal,
		CreatedAt: art.CreatedAt,
	}
	if err := m.invoices.Record(ctx, inv); err != nil {
		log.Warn("conversation.ledger.record_failed", "number", art.Number, "error", err)
	}
}
