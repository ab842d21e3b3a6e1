package invoice

import (
	"strings"
	"time"
	"unicode"
)

// Number returns "INV-YYYYMMDD-HHMMSS".
func Number(t time.Time) string {
	return "INV-" + t.Format("20060102-150405")
}

// Filename returns "invoice_<customer>_<YYYYMMDD_HHMMSS>.pdf" with the
// customer reduced to ASCII letters, digits, '-' and '_'.
func Filename(customer string, t time.Time) string {
	return "invoice_" + slug(customer) + "_" + t.Format("20060102_150405") + ".pdf"
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "customer"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
