package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/billbot/internal/repository"
)

const sheet = "Invoices"

// Service produces XLSX bytes for the invoice ledger.
type Service struct {
	invoices repository.InvoiceRepository
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, now: time.Now, logger: logger}
}

// ExportInvoicesXLSX returns a workbook of the identity's invoices.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> every invoice.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, identity string, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	lo, hi := window(from, to, s.now())
	invs, err := s.invoices.ListByIdentity(ctx, identity, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Date",
		"Invoice #",
		"Customer",
		"Items",
		"Subtotal",
		"CGST",
		"SGST",
		"Total",
		"File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "I1", style)
	}
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	row := 2
	var sub, cgst, sgst, total float64
	for _, inv := range invs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, inv.CreatedAt.Format("2006-01-02 15:04"))
		write(2, inv.Number)
		write(3, inv.Customer)
		write(4, inv.ItemCount)
		write(5, inv.Subtotal)
		write(6, inv.CGST)
		write(7, inv.SGST)
		write(8, inv.Total)
		write(9, inv.Filename)

		sub += inv.Subtotal
		cgst += inv.CGST
		sgst += inv.SGST
		total += inv.Total
		row++
	}

	if len(invs) > 0 {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), round2(sub))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), round2(cgst))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), round2(sgst))
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), round2(total))
		_ = f.SetCellStyle(sheet, "E2", fmt.Sprintf("H%d", row), money)
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // date
	_ = f.SetColWidth(sheet, "B", "B", 22) // number
	_ = f.SetColWidth(sheet, "C", "C", 28) // customer
	_ = f.SetColWidth(sheet, "D", "D", 8)
	_ = f.SetColWidth(sheet, "E", "H", 14) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 48) // file

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"identity", identity,
		"rows", len(invs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// window turns inclusive calendar dates into the half-open range the ledger expects.
func window(from, to *time.Time, now time.Time) (time.Time, time.Time) {
	var lo, hi time.Time
	if from != nil {
		lo = day(*from)
	}
	if to != nil {
		hi = day(*to).AddDate(0, 0, 1)
	}
	if from != nil && to == nil {
		hi = day(now).AddDate(0, 0, 1)
	}
	return lo, hi
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
