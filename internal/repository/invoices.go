package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

const (
	insertInvoiceSQL = `INSERT INTO invoices (id, identity, number, customer, filename, path, item_count, subtotal, cgst, sgst, total, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	listInvoicesSQL  = `SELECT id, identity, number, customer, filename, path, item_count, subtotal, cgst, sgst, total, created_at FROM invoices WHERE identity = ?`
)

type invoiceRepository struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db.SQL, dialect: db.Dialect, logger: logger}
}

func (r *invoiceRepository) Record(ctx context.Context, inv *entity.Invoice) error {
	if inv == nil {
		return common.ErrInvalidInput
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, rebind(r.dialect, insertInvoiceSQL),
		inv.ID.String(), inv.Identity, inv.Number, inv.Customer, inv.Filename, inv.Path,
		inv.ItemCount, inv.Subtotal, inv.CGST, inv.SGST, inv.Total, inv.CreatedAt)
	if err != nil {
		r.logger.Error("failed to record invoice", "identity", inv.Identity, "number", inv.Number, "error", err)
		return common.WrapError(err, "insert invoice")
	}
	return nil
}

func (r *invoiceRepository) ListByIdentity(ctx context.Context, identity string, from, to time.Time) ([]*entity.Invoice, error) {
	q := listInvoicesSQL
	args := []any{identity}
	if !from.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		q += " AND created_at < ?"
		args = append(args, to)
	}
	q += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, q), args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "identity", identity, "error", err)
		return nil, common.WrapError(err, "list invoices")
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		var (
			inv entity.Invoice
			id  string
		)
		if err := rows.Scan(&id, &inv.Identity, &inv.Number, &inv.Customer, &inv.Filename, &inv.Path,
			&inv.ItemCount, &inv.Subtotal, &inv.CGST, &inv.SGST, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan invoice")
		}
		if inv.ID, err = uuid.Parse(id); err != nil {
			return nil, common.WrapError(err, "parse invoice id")
		}
		inv.CreatedAt = inv.CreatedAt.UTC()
		out = append(out, &inv)
	}
	return out, rows.Err()
}
