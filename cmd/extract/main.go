package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/extract"
	"github.com/joseph-ayodele/billbot/internal/llm/openai"
	"github.com/joseph-ayodele/billbot/internal/ocr"
	"github.com/joseph-ayodele/billbot/internal/reconcile"
)

type output struct {
	Outcome string                   `json:"outcome"`
	Order   entity.PartialOrder      `json:"order"`
	Missing []constants.MissingField `json:"missing,omitempty"`
	Prompt  string                   `json:"prompt,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	text := flag.String("text", "", "order text")
	mediaURL := flag.String("media", "", "image or voice note URL")
	mediaType := flag.String("type", "", "media content type, e.g. image/jpeg")
	priorPath := flag.String("prior", "", "JSON file with the pending order")
	flag.Parse()

	if *text == "" && *mediaURL == "" {
		logger.Error("usage: extract -text '<order>' | -media <url> -type <mime> [-prior pending.json]")
		os.Exit(2)
	}
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	var prior *entity.PartialOrder
	if *priorPath != "" {
		b, err := os.ReadFile(*priorPath)
		if err != nil {
			logger.Error("read prior", "error", err)
			os.Exit(1)
		}
		prior = &entity.PartialOrder{}
		if err := json.Unmarshal(b, prior); err != nil {
			logger.Error("parse prior", "error", err)
			os.Exit(1)
		}
	}

	client := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		TranscribeModel: cfg.LLM.TranscribeModel,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
	}, logger)
	fetcher := extract.NewHTTPFetcher(extract.FetcherConfig{
		TwilioAccountSID: cfg.Media.TwilioAccountSID,
		TwilioAuthToken:  cfg.Media.TwilioAuthToken,
		MaxMB:            cfg.Media.MaxMB,
		Timeout:          cfg.Media.Timeout,
	}, logger)
	var opts []extract.AdapterOption
	if cfg.OCR.Enabled {
		tess := ocr.NewExtractor(ocr.Config{Tesseract: cfg.OCR.TesseractPath, TesseractLang: cfg.OCR.Lang, TessdataDir: cfg.OCR.TessdataDir}, logger)
		opts = append(opts, extract.WithOCR(extract.NewOCRAdapter(tess, logger)))
	}
	adapter := extract.NewLLMAdapter(client, client, fetcher, logger, opts...)

	ctx, cancel := common.WithTimeout(context.Background(), cfg.Server.TurnTimeout)
	defer cancel()

	in := extract.Input{
		Kind:        constants.ClassifyMedia(*mediaURL, *mediaType),
		Text:        *text,
		MediaURL:    *mediaURL,
		ContentType: *mediaType,
	}
	res, err := adapter.Extract(ctx, in, prior)
	out := reconcile.Reconcile(res, err)

	o := output{Outcome: out.Kind.String(), Order: out.Order, Missing: out.Missing}
	switch out.Kind {
	case reconcile.OutcomeIncomplete:
		o.Prompt = reconcile.MissingPrompt(out.Missing)
	case reconcile.OutcomeFailed:
		o.Error = out.Err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if out.Kind == reconcile.OutcomeFailed {
		os.Exit(1)
	}
}
