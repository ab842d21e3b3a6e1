// Package invoice renders complete orders into GST invoices as PDF files.
package invoice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

// Artifact identifies a rendered invoice.
type Artifact struct {
	Number    string
	Customer  string
	Filename  string
	Path      string
	Totals    Totals
	CreatedAt time.Time
}

// Renderer turns a complete order and the seller profile into an artifact.
// It is called at most once per completed order.
type Renderer interface {
	Render(ctx context.Context, order entity.PartialOrder, profile entity.CompanyProfile) (Artifact, error)
}

// PDFRenderer writes A4 invoices into a directory.
type PDFRenderer struct {
	dir         string
	defaultName string
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*PDFRenderer)

// WithClock overrides time.Now for invoice numbers and file names.
func WithClock(now func() time.Time) Option {
	return func(r *PDFRenderer) { r.now = now }
}

// WithDefaultCompany sets the seller name printed when the profile has none.
func WithDefaultCompany(name string) Option {
	return func(r *PDFRenderer) {
		if strings.TrimSpace(name) != "" {
			r.defaultName = strings.TrimSpace(name)
		}
	}
}

func NewPDFRenderer(dir string, logger *slog.Logger, opts ...Option) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &PDFRenderer{dir: dir, defaultName: constants.DefaultCompanyName, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir is where invoices are written.
func (r *PDFRenderer) Dir() string { return r.dir }

func (r *PDFRenderer) Render(ctx context.Context, order entity.PartialOrder, profile entity.CompanyProfile) (Artifact, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	customer := order.CustomerName()
	if customer == "" {
		return Artifact{}, fmt.Errorf("order has no customer")
	}
	totals, err := ComputeTotals(order)
	if err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create invoice dir: %w", err)
	}

	now := r.now()
	art := Artifact{
		Number:    Number(now),
		Customer:  customer,
		Filename:  Filename(customer, now),
		Totals:    totals,
		CreatedAt: now,
	}
	f, name, err := r.claim(art.Filename)
	if err != nil {
		r.logger.Error("invoice.render.claim_failed", "filename", art.Filename, "error", err)
		return Artifact{}, fmt.Errorf("create pdf: %w", err)
	}
	art.Filename = name
	art.Path = f.Name()

	if err := r.write(f, art, profile); err != nil {
		_ = os.Remove(art.Path)
		r.logger.Error("invoice.render.failed", "filename", art.Filename, "error", err)
		return Artifact{}, err
	}

	r.logger.Info("invoice.render.ok",
		"number", art.Number,
		"filename", art.Filename,
		"items", len(totals.Lines),
		"grand_total", totals.GrandTotal,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return art, nil
}

// claim creates the invoice file exclusively, suffixing the name when another
// render already holds it (same customer inside the same second).
func (r *PDFRenderer) claim(name string) (*os.File, string, error) {
	stem := strings.TrimSuffix(name, ".pdf")
	candidate := name
	for i := 2; i <= maxNameAttempts; i++ {
		f, err := os.OpenFile(filepath.Join(r.dir, candidate), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
		candidate = fmt.Sprintf("%s_%d.pdf", stem, i)
	}
	return nil, "", fmt.Errorf("no free file name for %s", name)
}

const maxNameAttempts = 1000

func (r *PDFRenderer) write(f *os.File, art Artifact, profile entity.CompanyProfile) error {
	code, err := barcodePNG(strings.TrimSuffix(art.Filename, ".pdf"), 60)
	if err != nil {
		_ = f.Close()
		return err
	}
	pdf := layout(art, r.sellerName(profile), profile, code)
	if err := pdf.Output(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

var (
	colWidths = []float64{70, 20, 30, 30, 30}
	colAlign  = []string{"L", "R", "R", "R", "R"}
)

func (r *PDFRenderer) sellerName(profile entity.CompanyProfile) string {
	if profile.Name != nil && strings.TrimSpace(*profile.Name) != "" {
		return strings.TrimSpace(*profile.Name)
	}
	return r.defaultName
}

func layout(art Artifact, name string, profile entity.CompanyProfile, code []byte) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(art.Number, true)
	pdf.SetCreator("billbot", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	// barcode of the file stem, top-right on every page
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("barcode", opt, bytes.NewReader(code))
	pdf.SetHeaderFunc(func() {
		pdf.ImageOptions("barcode", 125, 8, 70, 11, false, opt, 0, "")
		pdf.SetY(25)
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0x1a, 0x23, 0x7e)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0x28, 0x35, 0x93)
	pdf.CellFormat(0, 8, tr(name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	if profile.Address != nil && strings.TrimSpace(*profile.Address) != "" {
		pdf.MultiCell(0, 5, tr(strings.TrimSpace(*profile.Address)), "", "L", false)
	}
	if profile.TaxID != nil && strings.TrimSpace(*profile.TaxID) != "" {
		pdf.CellFormat(0, 5, tr("GSTIN: "+strings.TrimSpace(*profile.TaxID)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 6, "Bill To:", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Invoice #: "+art.Number, "", 1, "L", false, 0, "")
	pdf.CellFormat(90, 6, tr(art.Customer), "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Date: "+art.CreatedAt.Format("02-Jan-2006"), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// header row
	pdf.SetFillColor(0x28, 0x35, 0x93)
	pdf.SetTextColor(0xf5, 0xf5, 0xf5)
	pdf.SetDrawColor(0xbd, 0xbd, 0xbd)
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Item", "Qty", "Rate", "Tax (18%)", "Total"} {
		pdf.CellFormat(colWidths[i], 10, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for n, l := range art.Totals.Lines {
		if n%2 == 1 {
			pdf.SetFillColor(0xf5, 0xf5, 0xf5)
		} else {
			pdf.SetFillColor(0xff, 0xff, 0xff)
		}
		cells := []string{tr(l.Name), FormatQty(l.Qty), FormatMoney(l.Rate), FormatMoney(l.Tax), FormatMoney(l.Total)}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 8, c, "1", 0, colAlign[i], true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	totalRow := func(label, value string) {
		pdf.CellFormat(colWidths[0]+colWidths[1], 7, "", "", 0, "", false, 0, "")
		pdf.CellFormat(colWidths[2]+colWidths[3], 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[4], 7, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	totalRow("Subtotal:", FormatMoney(art.Totals.Subtotal))
	totalRow("CGST (9%):", FormatMoney(art.Totals.CGST))
	totalRow("SGST (9%):", FormatMoney(art.Totals.SGST))
	totalRow("Total Tax:", FormatMoney(art.Totals.Tax))

	pdf.SetFillColor(0xe3, 0xf2, 0xfd)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(colWidths[0]+colWidths[1], 9, "", "", 0, "", false, 0, "")
	pdf.CellFormat(colWidths[2]+colWidths[3], 9, "Grand Total:", "T", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[4], 9, FormatMoney(art.Totals.GrandTotal), "T", 1, "R", true, 0, "")

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Thank you for your business!", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0x80, 0x80, 0x80)
	pdf.CellFormat(0, 5, "This is a computer generated invoice.", "", 1, "L", false, 0, "")
	return pdf
}
