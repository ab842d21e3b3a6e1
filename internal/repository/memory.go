package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

const defaultMaxLog = constants.MaxConversationLog

// MemoryUserStore keeps records in a map. Records are cloned on the way in and out.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]*entity.User
	opts   options
	logger *slog.Logger
}

func NewMemoryUserStore(logger *slog.Logger, opts ...Option) *MemoryUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryUserStore{
		users:  make(map[string]*entity.User),
		opts:   buildOptions(opts),
		logger: logger,
	}
}

func (s *MemoryUserStore) Get(_ context.Context, identity string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[identity]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryUserStore) Create(_ context.Context, identity string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[identity]; ok {
		return u.Clone(), nil
	}
	u := entity.NewUser(identity, s.opts.now())
	s.users[identity] = u
	s.logger.Debug("user.created", "identity", identity)
	return u.Clone(), nil
}

func (s *MemoryUserStore) Update(_ context.Context, identity string, upd entity.UserUpdate) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[identity]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Apply(upd, s.opts.now())
	return u.Clone(), nil
}

func (s *MemoryUserStore) AppendLog(_ context.Context, identity string, e entity.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[identity]
	if !ok {
		return common.ErrNotFound
	}
	u.AppendLog(e, s.opts.maxLog, s.opts.now())
	return nil
}

// MemoryInvoiceRepository is the in-process ledger used with the memory driver.
type MemoryInvoiceRepository struct {
	mu       sync.RWMutex
	invoices []*entity.Invoice
}

func NewMemoryInvoiceRepository() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{}
}

func (r *MemoryInvoiceRepository) Record(_ context.Context, inv *entity.Invoice) error {
	if inv == nil {
		return common.ErrInvalidInput
	}
	c := *inv
	r.mu.Lock()
	r.invoices = append(r.invoices, &c)
	r.mu.Unlock()
	return nil
}

func (r *MemoryInvoiceRepository) ListByIdentity(_ context.Context, identity string, from, to time.Time) ([]*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Identity != identity || !inRange(inv.CreatedAt, from, to) {
			continue
		}
		c := *inv
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
