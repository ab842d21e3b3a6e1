package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/billbot/internal/llm"
)

// ExtractOrder implements llm.OrderExtractor over chat/completions.
// IMAGE requests attach the picture as an image_url part.
func (c *Client) ExtractOrder(ctx context.Context, req llm.OrderRequest) (llm.OrderFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"kind", req.Kind,
		"text_len", len(req.Text),
		"has_image", req.ImageDataURL != "",
		"ocr_hint_len", len(req.OCRHint),
		"has_prior", req.Prior != nil,
	)

	schema := llm.BuildOrderJSONSchema()
	user := llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."

	var userContent any = user
	if req.ImageDataURL != "" {
		userContent = []map[string]any{
			{"type": "text", "text": user},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageDataURL}},
		}
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.Kind)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
			{"role": "user", "content": userContent},
		},
	}

	var fail apiError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", rid).
		SetBody(body).
		SetError(&fail).
		Post("/chat/completions")
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.OrderFields{}, nil, fmt.Errorf("openai: %w", err)
	}
	raw := resp.Body()
	if resp.IsError() {
		msg := fail.message(raw)
		c.logger.Error("llm.extract.status_error",
			"req_id", rid, "status", resp.StatusCode(), "message", msg,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.OrderFields{}, raw, fmt.Errorf("openai: status %d: %s", resp.StatusCode(), msg)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.OrderFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.OrderFields{}, raw, fmt.Errorf("no choices in openai response")
	}

	out, content, dropped, err := llm.ParseOrderContent(cc.Choices[0].Message.Content, schema, !c.cfg.StrictSchema, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.OrderFields{}, content, err
	}
	if len(dropped) > 0 {
		c.logger.Warn("llm.extract.lenient_sanitize_applied",
			"req_id", rid, "dropped", dropped,
		)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"status", out.Status,
		"items", len(out.Data.Items),
		"has_customer", out.Data.Customer != nil,
		"missing", out.MissingFields,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
