package openai

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config for the OpenAI client.
type Config struct {
	APIKey          string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL         string        // default https://api.openai.com/v1
	Model           string        // chat model with vision, e.g. "gpt-4o-mini"
	TranscribeModel string        // e.g. "whisper-1"
	Temperature     float32       // 0..2
	Timeout         time.Duration // http client timeout
	StrictSchema    bool          // skip the lenient normalizer
}

type Client struct {
	cfg    Config
	rest   *resty.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{
		cfg:    cfg,
		rest:   rest,
		logger: logger,
	}
}
