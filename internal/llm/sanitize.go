package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
)

// StripCodeFences removes a markdown fence (``` or ```json) around model output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	return strings.TrimSpace(s)
}

var moneyNoise = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "rs.", "", "rs", "", "INR", "", ",", "", "/-", "")

// NormalizeOrderJSON
// - Wraps a bare {customer, items} object into {status, data}
// - Lower-cases status, defaulting to incomplete
// - Coerces numeric strings ("50", "₹50", "1,200") for qty and rate; unreadable values become null
// - Drops items without a name and unknown keys
func NormalizeOrderJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)

	// 1) bare order object
	if _, ok := m["data"]; !ok {
		if _, hasItems := m["items"]; hasItems {
			m["data"] = map[string]any{"customer": m["customer"], "items": m["items"]}
			delete(m, "customer")
			delete(m, "items")
			dropped = append(dropped, "data(wrapped)")
		}
	}

	// 2) status
	status, _ := m["status"].(string)
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "complete", "incomplete", "error":
	default:
		if status != "" {
			dropped = append(dropped, "status("+status+")")
		}
		status = "incomplete"
	}
	m["status"] = status

	// 3) data
	data, _ := m["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	out := map[string]any{"customer": nil, "items": []any{}}
	switch c := data["customer"].(type) {
	case string:
		if s := strings.TrimSpace(c); s != "" && !strings.EqualFold(s, "null") {
			out["customer"] = s
		}
	case nil:
	default:
		dropped = append(dropped, "customer(type)")
	}
	rawItems, _ := data["items"].([]any)
	items := make([]any, 0, len(rawItems))
	for i, ri := range rawItems {
		im, ok := ri.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("items[%d](type)", i))
			continue
		}
		name := ""
		switch n := im["name"].(type) {
		case string:
			name = strings.TrimSpace(n)
		case float64:
			name = strconv.FormatFloat(n, 'f', -1, 64)
		}
		if name == "" {
			dropped = append(dropped, fmt.Sprintf("items[%d](no name)", i))
			continue
		}
		items = append(items, map[string]any{
			"name": name,
			"qty":  coerceNumber(im["qty"]),
			"rate": coerceNumber(im["rate"]),
		})
	}
	out["items"] = items
	m["data"] = out

	// 4) missing_fields: keep strings only
	if mf, ok := m["missing_fields"].([]any); ok {
		tags := make([]any, 0, len(mf))
		for _, t := range mf {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
		m["missing_fields"] = tags
	} else if _, present := m["missing_fields"]; present {
		delete(m, "missing_fields")
		dropped = append(dropped, "missing_fields(type)")
	}

	if _, ok := m["message"].(string); !ok {
		delete(m, "message")
	}

	// 5) remove unknown keys
	allowed := map[string]struct{}{"status": {}, "data": {}, "missing_fields": {}, "message": {}}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

// coerceNumber returns a finite, non-negative float64 or nil.
func coerceNumber(v any) any {
	switch t := v.(type) {
	case float64:
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case string:
		s := strings.TrimSpace(moneyNoise.Replace(t))
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	default:
		return nil
	}
}
