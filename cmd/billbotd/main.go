package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/conversation"
	"github.com/joseph-ayodele/billbot/internal/extract"
	"github.com/joseph-ayodele/billbot/internal/invoice"
	"github.com/joseph-ayodele/billbot/internal/llm/openai"
	"github.com/joseph-ayodele/billbot/internal/ocr"
	"github.com/joseph-ayodele/billbot/internal/repository"
	"github.com/joseph-ayodele/billbot/internal/server"
	"github.com/joseph-ayodele/billbot/internal/transport/telegram"
	"github.com/joseph-ayodele/billbot/internal/transport/twilio"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer stores.CloseDB(logger)
	if err := stores.PingDB(ctx, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Extraction: OpenAI chat + vision, Whisper for voice notes, optional tesseract hint.
	llmClient := openai.NewClient(openai.Config{
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
		RetryCount:       2,
	}, logger)
	adapterOpts := []extract.AdapterOption{extract.WithMaxMediaMB(cfg.Media.MaxMB)}
	if cfg.OCR.Enabled {
		tess := ocr.NewExtractor(ocr.Config{
			Tesseract:     cfg.OCR.TesseractPath,
			TesseractLang: cfg.OCR.Lang,
			TessdataDir:   cfg.OCR.TessdataDir,
			PSM:           6,
		}, logger)
		adapterOpts = append(adapterOpts, extract.WithOCR(extract.NewOCRAdapter(tess, logger)))
	}
	adapter := extract.NewLLMAdapter(llmClient, llmClient, fetcher, logger, adapterOpts...)

	renderer := invoice.NewPDFRenderer(cfg.Invoice.OutputDir, logger, invoice.WithDefaultCompany(cfg.Invoice.DefaultName))

	machineOpts := []conversation.Option{
		conversation.WithInvoiceLedger(stores.Invoices),
		conversation.WithBaseURL(cfg.Server.PublicBaseURL),
		conversation.WithTurnTimeout(cfg.Server.TurnTimeout),
	}
	if cfg.Redis.URL != "" {
		rdb, err := repository.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(2)
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to reach redis", "error", err)
			os.Exit(1)
		}
		machineOpts = append(machineOpts, conversation.WithLocker(repository.NewRedisLocker(rdb, cfg.Redis.LockTTL, logger)))
		logger.Info("using redis identity lock")
	}
	machine := conversation.NewMachine(stores.Users, adapter, renderer, logger, machineOpts...)

	routes := server.Routes{
		Twilio:    twilio.NewWebhook(machine, cfg.Server.PublicBaseURL, logger),
		StaticDir: cfg.Invoice.OutputDir,
		Health: func(ctx context.Context) error {
			return stores.PingDB(ctx, cfg.Database.DialTimeout, logger)
		},
	}
	if cfg.Telegram.Token != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		if cfg.Server.PublicBaseURL != "" {
			if err := telegram.SetWebhook(bot, cfg.Server.PublicBaseURL+cfg.Telegram.WebhookPath); err != nil {
				logger.Error("failed to register telegram webhook", "error", err)
				os.Exit(1)
			}
		} else {
			logger.Warn("PUBLIC_BASE_URL unset; telegram webhook must be registered manually")
		}
		routes.Telegram = telegram.NewWebhook(bot, machine, cfg.Server.PublicBaseURL, logger)
		routes.TelegramPath = cfg.Telegram.WebhookPath
		logger.Info("telegram enabled", "bot", bot.Self.UserName, "path", cfg.Telegram.WebhookPath)
	}

	srv := server.New(cfg.Server, server.NewRouter(routes, logger), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
