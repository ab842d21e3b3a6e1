package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/export"
	"github.com/joseph-ayodele/billbot/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	identity := flag.String("identity", "", "sender identity, e.g. whatsapp:+919800000001")
	fromStr := flag.String("from", "", "first day (YYYY-MM-DD), inclusive")
	toStr := flag.String("to", "", "last day (YYYY-MM-DD), inclusive")
	out := flag.String("out", cfg.Invoice.LedgerPath, "output .xlsx path")
	flag.Parse()

	if *identity == "" {
		logger.Error("usage: invoice-export -identity <id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-out ledger.xlsx]")
		os.Exit(2)
	}
	from, err := parseDate(*fromStr)
	if err != nil {
		logger.Error("from must be YYYY-MM-DD", "value", *fromStr)
		os.Exit(2)
	}
	to, err := parseDate(*toStr)
	if err != nil {
		logger.Error("to must be YYYY-MM-DD", "value", *toStr)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer stores.CloseDB(logger)

	xlsx, err := export.NewService(stores.Invoices, logger).ExportInvoicesXLSX(ctx, *identity, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("write xlsx", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(xlsx))
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
