// Package conversation drives the per-user chat state machine: onboarding,
// command keywords and the order pipeline from extraction to invoice.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/extract"
	"github.com/joseph-ayodele/billbot/internal/invoice"
	"github.com/joseph-ayodele/billbot/internal/repository"
)

// Inbound is one message from a chat channel.
type Inbound struct {
	Identity         string
	Text             string
	MediaURL         string
	MediaContentType string
	// BaseURL overrides the configured public base URL for download links.
	BaseURL string
}

// Document is a file the transport should attach to the reply.
type Document struct {
	URL      string
	Filename string
	Path     string
}

// Reply is the single outbound message for a turn.
type Reply struct {
	Text     string
	Document *Document
}

// Machine handles turns. It never returns errors to the caller: every
// failure becomes reply text.
type Machine struct {
	store       repository.UserStore
	invoices    repository.InvoiceRepository
	locker      repository.Locker
	adapter     extract.Adapter
	renderer    invoice.Renderer
	baseURL     string
	turnTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Machine)

// WithLocker replaces the in-process per-identity lock.
func WithLocker(l repository.Locker) Option {
	return func(m *Machine) { m.locker = l }
}

// WithInvoiceLedger records every rendered invoice.
func WithInvoiceLedger(r repository.InvoiceRepository) Option {
	return func(m *Machine) { m.invoices = r }
}

// WithBaseURL sets the public prefix for /static links.
func WithBaseURL(u string) Option {
	return func(m *Machine) { m.baseURL = strings.TrimRight(u, "/") }
}

// WithTurnTimeout bounds extraction and rendering for one turn.
func WithTurnTimeout(d time.Duration) Option {
	return func(m *Machine) { m.turnTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func NewMachine(store repository.UserStore, adapter extract.Adapter, renderer invoice.Renderer, logger *slog.Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		store:    store,
		adapter:  adapter,
		renderer: renderer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.locker == nil {
		m.locker = repository.NewKeyedMutex()
	}
	return m
}

// Handle processes one inbound message under the sender's lock.
func (m *Machine) Handle(ctx context.Context, in Inbound) Reply {
	start := time.Now()
	identity := strings.TrimSpace(in.Identity)
	if identity == "" {
		m.logger.Warn("conversation.turn.rejected", "reason", "empty identity")
		return Reply{Text: replyStoreFailed}
	}
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.NewString())
	}
	ctx = common.WithIdentity(ctx, identity)
	log := m.logger.With("identity", identity, "request_id", common.RequestIDFromContext(ctx))

	unlock, err := m.locker.Lock(ctx, identity)
	if err != nil {
		log.Error("conversation.lock.failed", "error", err)
		return Reply{Text: replyStoreFailed}
	}
	defer unlock()

	user, err := m.loadUser(ctx, identity)
	if err != nil {
		log.Error("conversation.turn.failed", "error", err)
		return Reply{Text: replyStoreFailed}
	}
	log.Debug("conversation.turn.start", "state", user.State, "step", user.OnboardingStep)

	reply, err := m.dispatch(ctx, log, user, in)
	if err != nil {
		// no further writes after a store failure
		log.Error("conversation.turn.failed", "state", user.State, "error", err)
		return Reply{Text: replyStoreFailed}
	}

	entry := entity.LogEntry{Timestamp: m.now(), Inbound: describeInbound(in), Outbound: reply.Text}
	if err := m.store.AppendLog(ctx, identity, entry); err != nil {
		log.Warn("conversation.log.append_failed", "error", err)
	}
	log.Info("conversation.turn.ok", "from_state", user.State, "elapsed_ms", time.Since(start).Milliseconds())
	return reply
}

func (m *Machine) loadUser(ctx context.Context, identity string) (*entity.User, error) {
	user, err := m.store.Get(ctx, identity)
	if errors.Is(err, common.ErrNotFound) {
		user, err = m.store.Create(ctx, identity)
	}
	if err != nil {
		return nil, common.StoreFailed("load user", err)
	}
	return user, nil
}

// dispatch applies command keywords first, then the handler for the user's state.
// Only store failures are returned as errors.
func (m *Machine) dispatch(ctx context.Context, log *slog.Logger, u *entity.User, in Inbound) (Reply, error) {
	switch constants.MatchCommand(in.Text) {
	case constants.CommandReset:
		return m.reset(ctx, u)
	case constants.CommandHelp:
		return Reply{Text: replyHelp}, nil
	case constants.CommandGreeting:
		if u.State.IsAwaiting() {
			if err := m.update(ctx, u.Identity, entity.UserUpdate{State: statePtr(constants.StateReady), SetPending: true}); err != nil {
				return Reply{}, err
			}
			log.Info("conversation.order.cancelled")
			return Reply{Text: replyGreetingCancelled}, nil
		}
		if u.State == constants.StateReady {
			return Reply{Text: replyGreetingReady}, nil
		}
	}

	switch {
	case u.State == constants.StateNew:
		return m.welcome(ctx, u)
	case u.State == constants.StateOnboarding:
		return m.onboard(ctx, u, in.Text)
	case u.State.TakesOrders():
		return m.takeOrder(ctx, log, u, in)
	}
	log.Warn("conversation.state.unknown", "state", u.State)
	return Reply{Text: replyUnknownState}, nil
}

func (m *Machine) reset(ctx context.Context, u *entity.User) (Reply, error) {
	err := m.update(ctx, u.Identity, entity.UserUpdate{
		State:          statePtr(constants.StateNew),
		OnboardingStep: intPtr(constants.OnboardingNotStarted),
		ResetCompany:   true,
		SetPending:     true,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: replyReset}, nil
}

func (m *Machine) update(ctx context.Context, identity string, upd entity.UserUpdate) error {
	if _, err := m.store.Update(ctx, identity, upd); err != nil {
		return common.StoreFailed("update user", err)
	}
	return nil
}

func (m *Machine) link(in Inbound, filename string) string {
	base := strings.TrimRight(in.BaseURL, "/")
	if base == "" {
		base = m.baseURL
	}
	return base + "/static/" + filename
}

func describeInbound(in Inbound) string {
	if strings.TrimSpace(in.MediaURL) == "" {
		return in.Text
	}
	kind := strings.ToLower(string(constants.ClassifyMedia(in.MediaURL, in.MediaContentType)))
	s := "[" + kind + "]"
	if u, err := url.Parse(in.MediaURL); err == nil && u.Host != "" {
		s += " " + u.Host
	}
	if t := strings.TrimSpace(in.Text); t != "" {
		s += " " + t
	}
	return s
}

func statePtr(s constants.State) *constants.State { return &s }
func intPtr(i int) *int                           { return &i }
func strPtr(s string) *string                     { return &s }
