package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/repository"
)

// Stores bundles the user store and invoice ledger for one backend.
type Stores struct {
	Users    repository.UserStore
	Invoices repository.InvoiceRepository
	// DB is nil for the memory driver.
	DB *repository.DB
}

// ConnectDB opens the configured backend. The memory driver needs no connection.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Stores, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Users:    repository.NewMemoryUserStore(logger),
			Invoices: repository.NewMemoryInvoiceRepository(),
		}, nil
	}

	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, common.StoreFailed("connect database", err)
	}
	return &Stores{
		Users:    repository.NewSQLUserStore(db, logger),
		Invoices: repository.NewInvoiceRepository(db, logger),
		DB:       db,
	}, nil
}

// PingDB pings the database to ensure it's responsive
func (s *Stores) PingDB(ctx context.Context, timeout time.Duration, logger *slog.Logger) error {
	if s == nil || s.DB == nil {
		return nil
	}
	return repository.HealthCheck(ctx, s.DB, timeout, logger)
}

// CloseDB closes the database connections gracefully
func (s *Stores) CloseDB(logger *slog.Logger) {
	if s == nil || s.DB == nil {
		return
	}
	repository.Close(s.DB, logger)
}
