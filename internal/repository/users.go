package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

const (
	selectUserSQL = `SELECT identity, state, onboarding_step, company, pending_order, conversation_log, created_at, updated_at FROM users WHERE identity = ?`
	insertUserSQL = `INSERT INTO users (identity, state, onboarding_step, company, pending_order, conversation_log, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (identity) DO NOTHING`
	updateUserSQL = `UPDATE users SET state = ?, onboarding_step = ?, company = ?, pending_order = ?, conversation_log = ?, updated_at = ? WHERE identity = ?`
)

type sqlUserStore struct {
	db      *sql.DB
	dialect string
	opts    options
	logger  *slog.Logger
}

// NewSQLUserStore stores users in the users table. Nested fields are JSON text.
func NewSQLUserStore(db *DB, logger *slog.Logger, opts ...Option) UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlUserStore{
		db:      db.SQL,
		dialect: db.Dialect,
		opts:    buildOptions(opts),
		logger:  logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *sqlUserStore) Get(ctx context.Context, identity string) (*entity.User, error) {
	return s.load(ctx, s.db.QueryRowContext(ctx, rebind(s.dialect, selectUserSQL), identity))
}

func (s *sqlUserStore) Create(ctx context.Context, identity string) (*entity.User, error) {
	u := entity.NewUser(identity, s.opts.now())
	args, err := encodeUser(u)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, rebind(s.dialect, insertUserSQL),
		u.Identity, string(u.State), u.OnboardingStep, args.company, args.pending, args.log, u.CreatedAt, u.UpdatedAt); err != nil {
		s.logger.Error("failed to create user", "identity", identity, "error", err)
		return nil, common.WrapError(err, "insert user")
	}
	return s.Get(ctx, identity)
}

func (s *sqlUserStore) Update(ctx context.Context, identity string, upd entity.UserUpdate) (*entity.User, error) {
	return s.mutate(ctx, identity, func(u *entity.User, now time.Time) {
		u.Apply(upd, now)
	})
}

func (s *sqlUserStore) AppendLog(ctx context.Context, identity string, e entity.LogEntry) error {
	_, err := s.mutate(ctx, identity, func(u *entity.User, now time.Time) {
		u.AppendLog(e, s.opts.maxLog, now)
	})
	return err
}

// mutate runs a read-modify-write of one row inside a transaction.
func (s *sqlUserStore) mutate(ctx context.Context, identity string, fn func(*entity.User, time.Time)) (*entity.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	q := selectUserSQL
	if s.dialect == DialectPostgres {
		q += " FOR UPDATE"
	}
	u, err := s.load(ctx, tx.QueryRowContext(ctx, rebind(s.dialect, q), identity))
	if err != nil {
		return nil, err
	}

	fn(u, s.opts.now())

	args, err := encodeUser(u)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, rebind(s.dialect, updateUserSQL),
		string(u.State), u.OnboardingStep, args.company, args.pending, args.log, u.UpdatedAt, u.Identity); err != nil {
		s.logger.Error("failed to update user", "identity", identity, "error", err)
		return nil, common.WrapError(err, "update user")
	}
	if err := tx.Commit(); err != nil {
		return nil, common.WrapError(err, "commit")
	}
	return u, nil
}

func (s *sqlUserStore) load(_ context.Context, row rowScanner) (*entity.User, error) {
	var (
		u                   entity.User
		state               string
		company, logJSON    string
		pending             sql.NullString
		createdAt, updateAt time.Time
	)
	if err := row.Scan(&u.Identity, &state, &u.OnboardingStep, &company, &pending, &logJSON, &createdAt, &updateAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "select user")
	}
	u.State = constants.State(state)
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updateAt.UTC()
	if err := json.Unmarshal([]byte(company), &u.Company); err != nil {
		return nil, common.WrapError(err, "decode company")
	}
	if pending.Valid && pending.String != "" && pending.String != "null" {
		var p entity.PartialOrder
		if err := json.Unmarshal([]byte(pending.String), &p); err != nil {
			return nil, common.WrapError(err, "decode pending order")
		}
		u.PendingOrder = &p
	}
	if err := json.Unmarshal([]byte(logJSON), &u.ConversationLog); err != nil {
		return nil, common.WrapError(err, "decode conversation log")
	}
	if u.ConversationLog == nil {
		u.ConversationLog = []entity.LogEntry{}
	}
	return &u, nil
}

type encodedUser struct {
	company string
	pending sql.NullString
	log     string
}

func encodeUser(u *entity.User) (encodedUser, error) {
	var out encodedUser
	b, err := json.Marshal(u.Company)
	if err != nil {
		return out, common.WrapError(err, "encode company")
	}
	out.company = string(b)
	if u.PendingOrder != nil {
		b, err = json.Marshal(u.PendingOrder)
		if err != nil {
			return out, common.WrapError(err, "encode pending order")
		}
		out.pending = sql.NullString{String: string(b), Valid: true}
	}
	logEntries := u.ConversationLog
	if logEntries == nil {
		logEntries = []entity.LogEntry{}
	}
	b, err = json.Marshal(logEntries)
	if err != nil {
		return out, common.WrapError(err, "encode conversation log")
	}
	out.log = string(b)
	return out, nil
}
