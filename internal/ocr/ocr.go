package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	EnableTSVConfidence bool
	PSM                 int // 6 suits a uniform block of text; 0 leaves the default
}

// Result is the OCR text of one image. It is a hint for the vision model, never authoritative.
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type ExtractorOption func(*Extractor)

// WithRunner swaps the command runner.
func WithRunner(r Runner) ExtractorOption {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractImage writes the image to a temp file and runs tesseract on it.
func (e *Extractor) ExtractImage(ctx context.Context, data []byte, mimeType string) (Result, error) {
	start := time.Now()
	if len(data) == 0 {
		return Result{}, fmt.Errorf("empty image")
	}

	dir, err := os.MkdirTemp("", "billbot-ocr-*")
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = os.RemoveAll(dir) }()
	path := filepath.Join(dir, "note."+constants.ExtForMIME(mimeType))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Result{}, err
	}

	e.logger.Debug("ocr.image.start", "bytes", len(data), "mime", mimeType)
	txt, warn, err := e.tesseract(ctx, path, false)
	if err != nil {
		return Result{Warnings: warn, Duration: time.Since(start)}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if e.cfg.EnableTSVConfidence {
		if tsv, w, err2 := e.tesseract(ctx, path, true); err2 == nil {
			ocrConf = tsvMeanConfidence(tsv)
		} else {
			warn = append(warn, w...)
			warn = append(warn, err2.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight OCR higher if present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	res := Result{
		Text:       txt,
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warn,
		Confidence: conf,
	}
	e.logger.Info("ocr.image.ok",
		"text_len", len(txt),
		"confidence", conf,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// tesseract runs `tesseract <file> stdout -l <lang> [--psm N] [--tessdata-dir D] [tsv]`.
func (e *Extractor) tesseract(ctx context.Context, path string, tsv bool) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if tsv {
		args = append(args, "tsv")
	}
	out, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		var warn []string
		var ce *CommandError
		if errors.As(err, &ce) && ce.Stderr != "" {
			warn = []string{ce.Stderr}
		}
		return "", warn, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
