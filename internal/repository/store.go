package repository

import (
	"context"
	"time"

	"github.com/joseph-ayodele/billbot/internal/entity"
)

// UserStore persists one record per sender identity.
//
// Get returns common.ErrNotFound for an unknown identity. Create returns the
// existing record if one is already present. Update applies scalar fields by
// replacement and merges the company profile field by field. AppendLog keeps
// only the newest constants.MaxConversationLog entries.
type UserStore interface {
	Get(ctx context.Context, identity string) (*entity.User, error)
	Create(ctx context.Context, identity string) (*entity.User, error)
	Update(ctx context.Context, identity string, upd entity.UserUpdate) (*entity.User, error)
	AppendLog(ctx context.Context, identity string, e entity.LogEntry) error
}

// InvoiceRepository is the ledger of rendered invoices.
type InvoiceRepository interface {
	Record(ctx context.Context, inv *entity.Invoice) error
	// ListByIdentity returns invoices oldest first. Zero from/to leave that side open.
	ListByIdentity(ctx context.Context, identity string, from, to time.Time) ([]*entity.Invoice, error)
}

// Option configures the stores in this package.
type Option func(*options)

type options struct {
	now    func() time.Time
	maxLog int
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxLog overrides the conversation log bound.
func WithMaxLog(n int) Option {
	return func(o *options) { o.maxLog = n }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }, maxLog: defaultMaxLog}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
