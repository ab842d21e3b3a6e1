// Package twilio adapts the Twilio WhatsApp/SMS webhook to conversation turns.
package twilio

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/billbot/internal/conversation"
)

// Handler runs one conversation turn.
type Handler interface {
	Handle(ctx context.Context, in conversation.Inbound) conversation.Reply
}

// Webhook answers Twilio's form POST with TwiML.
type Webhook struct {
	turns   Handler
	baseURL string
	logger  *slog.Logger
}

// NewWebhook builds the handler. With an empty baseURL, download links are
// built from the request's forwarded scheme and host.
func NewWebhook(turns Handler, baseURL string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{turns: turns, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message *message `xml:"Message,omitempty"`
}

type message struct {
	Body  string `xml:"Body"`
	Media string `xml:"Media,omitempty"`
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseForm(); err != nil {
		http.Error(rw, "bad form", http.StatusBadRequest)
		return
	}
	in := Inbound(r.PostForm)
	if in.Identity == "" {
		http.Error(rw, "missing From", http.StatusBadRequest)
		return
	}
	in.BaseURL = w.baseURL
	if in.BaseURL == "" {
		in.BaseURL = requestBaseURL(r)
	}

	reply := w.turns.Handle(r.Context(), in)

	resp := twiml{Message: &message{Body: reply.Text}}
	if reply.Document != nil {
		resp.Message.Media = reply.Document.URL
	}
	out, err := xml.Marshal(resp)
	if err != nil {
		w.logger.Error("twilio.reply.encode_failed", "error", err)
		http.Error(rw, "encode", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/xml")
	_, _ = rw.Write([]byte(xml.Header))
	_, _ = rw.Write(out)

	w.logger.Info("twilio.webhook.ok",
		"from", in.Identity,
		"has_media", in.MediaURL != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

type formValues interface {
	Get(key string) string
}

// Inbound maps Twilio webhook fields onto a turn. Only the first attachment is used.
func Inbound(form formValues) conversation.Inbound {
	in := conversation.Inbound{
		Identity: strings.TrimSpace(form.Get("From")),
		Text:     strings.TrimSpace(form.Get("Body")),
	}
	if form.Get("NumMedia") != "" && form.Get("NumMedia") != "0" {
		in.MediaURL = strings.TrimSpace(form.Get("MediaUrl0"))
		in.MediaContentType = strings.TrimSpace(form.Get("MediaContentType0"))
	}
	return in
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.Split(h, ",")[0])
	}
	return scheme + "://" + host
}
