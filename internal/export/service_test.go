package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/repository"
)

func seed(t *testing.T, repo repository.InvoiceRepository, identity, number string, at time.Time, total float64) {
	t.Helper()
	require.NoError(t, repo.Record(context.Background(), &entity.Invoice{
		Identity:  identity,
		Number:    number,
		Customer:  "Ramesh",
		Filename:  "invoice_" + number + ".pdf",
		ItemCount: 1,
		Subtotal:  total / 1.18,
		Total:     total,
		CreatedAt: at,
	}))
}

func TestExportInvoicesXLSX(t *testing.T) {
	repo := repository.NewMemoryInvoiceRepository()
	seed(t, repo, "a", "INV-1", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 590)
	seed(t, repo, "a", "INV-2", time.Date(2025, 3, 2, 23, 30, 0, 0, time.UTC), 118)
	seed(t, repo, "a", "INV-3", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 236)
	seed(t, repo, "b", "INV-9", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 1)

	svc := NewService(repo, nil)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	b, err := svc.ExportInvoicesXLSX(context.Background(), "a", &from, &to)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4) // header, two invoices, totals
	assert.Equal(t, "Invoice #", rows[0][1])
	assert.Equal(t, "INV-1", rows[1][1])
	assert.Equal(t, "INV-2", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])

	v, err := f.GetCellValue(sheet, "H4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "708", v)
}

func TestExportInvoicesXLSX_Empty(t *testing.T) {
	svc := NewService(repository.NewMemoryInvoiceRepository(), nil)
	b, err := svc.ExportInvoicesXLSX(context.Background(), "nobody", nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type brokenRepo struct{ repository.InvoiceRepository }

func (brokenRepo) ListByIdentity(context.Context, string, time.Time, time.Time) ([]*entity.Invoice, error) {
	return nil, errors.New("db down")
}

func TestExportInvoicesXLSX_QueryError(t *testing.T) {
	_, err := NewService(brokenRepo{}, nil).ExportInvoicesXLSX(context.Background(), "a", nil, nil)
	assert.ErrorContains(t, err, "db down")
}

func TestWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	from := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 5, 1, 0, 0, 0, time.UTC)

	lo, hi := window(&from, nil, now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), lo)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), hi)

	lo, hi = window(nil, &to, now)
	assert.True(t, lo.IsZero())
	assert.Equal(t, time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), hi)

	lo, hi = window(nil, nil, now)
	assert.True(t, lo.IsZero())
	assert.True(t, hi.IsZero())
}
