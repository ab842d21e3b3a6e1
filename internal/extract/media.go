package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
)

type FetcherConfig struct {
	// Twilio media URLs need basic auth with the account SID and auth token.
	TwilioAccountSID string
	TwilioAuthToken  string
	// AuthHostSuffix limits basic auth to matching hosts; default "twilio.com".
	AuthHostSuffix string
	MaxMB          int
	Timeout        time.Duration
	RetryCount     int
}

// HTTPFetcher downloads media over HTTP.
type HTTPFetcher struct {
	cfg    FetcherConfig
	client *resty.Client
	logger *slog.Logger
}

func NewHTTPFetcher(cfg FetcherConfig, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxMB <= 0 {
		cfg.MaxMB = constants.MaxMediaMBDefault
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.AuthHostSuffix == "" {
		cfg.AuthHostSuffix = "twilio.com"
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetResponseBodyLimit(cfg.MaxMB * 1024 * 1024)
	return &HTTPFetcher{cfg: cfg, client: client, logger: logger}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Media, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Media{}, fmt.Errorf("%w: bad media url", common.ErrInvalidInput)
	}

	req := f.client.R().SetContext(ctx)
	if f.cfg.TwilioAccountSID != "" && strings.HasSuffix(u.Hostname(), f.cfg.AuthHostSuffix) {
		req.SetBasicAuth(f.cfg.TwilioAccountSID, f.cfg.TwilioAuthToken)
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		err = stripURL(err)
		f.logger.Error("media.fetch.http_error", "host", u.Hostname(), "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		if errors.Is(err, resty.ErrResponseBodyTooLarge) {
			return Media{}, fmt.Errorf("%w: media is larger than %d MB", common.ErrInvalidInput, f.cfg.MaxMB)
		}
		return Media{}, fmt.Errorf("%w: fetch media: %v", common.ErrUpstream, err)
	}
	if resp.IsError() {
		f.logger.Error("media.fetch.status_error", "host", u.Hostname(), "status", resp.StatusCode(), "elapsed_ms", time.Since(start).Milliseconds())
		return Media{}, fmt.Errorf("%w: fetch media: status %d", common.ErrUpstream, resp.StatusCode())
	}
	body := resp.Body()
	f.logger.Info("media.fetch.ok",
		"host", u.Hostname(),
		"bytes", len(body),
		"content_type", resp.Header().Get("Content-Type"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Media{Data: body, ContentType: resp.Header().Get("Content-Type")}, nil
}

// stripURL drops the request URL from transport errors. Telegram file URLs
// carry the bot token in their path.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
