// Package telegram adapts Telegram bot updates to conversation turns.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/conversation"
)

// Handler runs one conversation turn.
type Handler interface {
	Handle(ctx context.Context, in conversation.Inbound) conversation.Reply
}

// Bot is the slice of *tgbotapi.BotAPI the webhook needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Webhook struct {
	bot     Bot
	turns   Handler
	baseURL string
	logger  *slog.Logger
}

func NewWebhook(bot Bot, turns Handler, baseURL string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{bot: bot, turns: turns, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// SetWebhook points Telegram at url.
func SetWebhook(api *tgbotapi.BotAPI, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("telegram webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("telegram set webhook: %w", err)
	}
	return nil
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(rw, "bad update", http.StatusBadRequest)
		return
	}
	// Telegram retries non-2xx responses, so everything past decoding answers 200.
	defer rw.WriteHeader(http.StatusOK)

	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	in, err := w.inbound(msg)
	if err != nil {
		w.logger.Warn("telegram.media.resolve_failed", "chat_id", msg.Chat.ID, "error", err)
		w.send(msg.Chat.ID, conversation.Reply{Text: "❌ Sorry, I couldn't download that file. Please try again."})
		return
	}
	in.BaseURL = w.baseURL

	reply := w.turns.Handle(r.Context(), in)
	w.send(msg.Chat.ID, reply)

	w.logger.Info("telegram.webhook.ok",
		"chat_id", msg.Chat.ID,
		"has_media", in.MediaURL != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

var commandText = map[string]string{
	"start": "hi",
	"help":  "help",
	"reset": "reset",
}

func (w *Webhook) inbound(msg *tgbotapi.Message) (conversation.Inbound, error) {
	in := conversation.Inbound{
		Identity: "telegram:" + strconv.FormatInt(msg.Chat.ID, 10),
		Text:     strings.TrimSpace(msg.Text),
	}
	if msg.IsCommand() {
		if t, ok := commandText[msg.Command()]; ok {
			in.Text = t
		}
	}

	var fileID, mime string
	switch {
	case len(msg.Photo) > 0:
		fileID, mime = msg.Photo[len(msg.Photo)-1].FileID, constants.DefaultImageMIME
	case msg.Voice != nil:
		fileID, mime = msg.Voice.FileID, orDefault(msg.Voice.MimeType, constants.DefaultAudioMIME)
	case msg.Audio != nil:
		fileID, mime = msg.Audio.FileID, orDefault(msg.Audio.MimeType, "audio/mpeg")
	case msg.Document != nil && constants.ClassifyMedia("x", msg.Document.MimeType) != constants.TEXT:
		fileID, mime = msg.Document.FileID, msg.Document.MimeType
	default:
		return in, nil
	}

	link, err := w.bot.GetFileDirectURL(fileID)
	if err != nil {
		return in, err
	}
	in.MediaURL = link
	in.MediaContentType = mime
	if in.Text == "" {
		in.Text = strings.TrimSpace(msg.Caption)
	}
	return in, nil
}

func (w *Webhook) send(chatID int64, reply conversation.Reply) {
	if _, err := w.bot.Send(tgbotapi.NewMessage(chatID, reply.Text)); err != nil {
		w.logger.Error("telegram.send.failed", "chat_id", chatID, "error", err)
		return
	}
	if reply.Document == nil || reply.Document.Path == "" {
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(reply.Document.Path))
	if _, err := w.bot.Send(doc); err != nil {
		w.logger.Error("telegram.send_document.failed", "chat_id", chatID, "error", err)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
