package llm

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
)

// ImageDataURL encodes image bytes for a vision message. Oversized images are refused.
func ImageDataURL(b []byte, mimeType string, maxMB int) (string, error) {
	if len(b) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if maxMB <= 0 {
		maxMB = constants.MaxMediaMBDefault
	}
	if len(b) > maxMB*1024*1024 {
		return "", fmt.Errorf("image is %d bytes, limit is %d MB", len(b), maxMB)
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if !strings.HasPrefix(mt, "image/") {
		mt = constants.DefaultImageMIME
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// ParseOrderContent runs the model's message content through fence stripping,
// strict validation and, if that fails, the lenient normalizer.
func ParseOrderContent(content string, schema map[string]any, lenient bool, logger *slog.Logger) (OrderFields, []byte, []string, error) {
	raw := []byte(StripCodeFences(content))
	var dropped []string
	if err := ValidateJSONAgainstSchema(schema, raw); err != nil {
		if !lenient {
			return OrderFields{}, raw, nil, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, d, sErr := NormalizeOrderJSON(raw, logger)
		if sErr != nil {
			return OrderFields{}, raw, nil, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return OrderFields{}, cleaned, d, fmt.Errorf("schema validation failed: %w", vErr)
		}
		raw, dropped = cleaned, d
	}
	var out OrderFields
	if err := json.Unmarshal(raw, &out); err != nil {
		return OrderFields{}, raw, dropped, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, raw, dropped, nil
}
