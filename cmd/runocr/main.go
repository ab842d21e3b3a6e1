package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/ocr"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.LogLevel, "json", os.Stderr)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <image-file>")
		os.Exit(2)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read image", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.TesseractPath,
		TesseractLang:       cfg.OCR.Lang,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: true,
		PSM:                 6,
	}, logger)
	res, err := extractor.ExtractImage(ctx, data, http.DetectContentType(data))
	if err != nil {
		logger.Error("ocr failed", "error", err, "warnings", res.Warnings)
		os.Exit(1)
	}

	logger.Info("ocr done",
		"lang", res.Language,
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
