package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/billbot/constants"
)

type transcription struct {
	Text string `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// message prefers the decoded API message and falls back to the raw body.
func (e apiError) message(raw []byte) string {
	if e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}

// Transcribe implements llm.Transcriber with the audio/transcriptions endpoint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (string, error) {
	start := time.Now()
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	if filename == "" {
		filename = "voice." + constants.ExtForMIME(mimeType)
	}

	var (
		out  transcription
		fail apiError
	)
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio)).
		SetFormData(map[string]string{"model": c.cfg.TranscribeModel}).
		SetResult(&out).
		SetError(&fail).
		Post("/audio/transcriptions")
	if err != nil {
		c.logger.Error("llm.transcribe.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("openai transcribe: %w", err)
	}
	if resp.IsError() {
		msg := fail.message(resp.Body())
		c.logger.Error("llm.transcribe.status_error",
			"status", resp.StatusCode(),
			"message", msg,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai transcribe status %d: %s", resp.StatusCode(), msg)
	}

	text := strings.TrimSpace(out.Text)
	c.logger.Info("llm.transcribe.ok",
		"bytes", len(audio),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if text == "" {
		return "", fmt.Errorf("empty transcription")
	}
	return text, nil
}
