package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
)

const responseShape = `{"status": "complete" | "incomplete", "data": {"customer": "customer name or null", "items": [{"name": "item name", "qty": number_or_null, "rate": number_or_null}]}, "missing_fields": ["customer", "item_1_qty", "item_2_rate", ...]}`

// BuildSystemPrompt returns the instructions for the given input kind.
// Images get the handwritten-note rules; text and transcripts get the Hinglish rules.
func BuildSystemPrompt(kind constants.InputKind) string {
	var parts []string
	if kind == constants.IMAGE {
		parts = []string{
			"You are an OCR assistant for handwritten kacha bills (rough customer order notes).",
			"The handwriting may be Hindi, Marathi, English or mixed, messy in places, and use local abbreviations (kg, pc, dz for dozen).",
			"Ignore crossed-out items.",
			"For quantities look for numbers before item names. For rates look for ₹, Rs, or numbers after @ or per.",
			"If you cannot read something clearly, set it to null.",
		}
	} else {
		parts = []string{
			"You are an order processing assistant for Indian businesses.",
			"Translate Hindi/Hinglish item names to English (ande → Eggs, chawal → Rice, doodh → Milk).",
			"If the message is just a greeting or not an order, return status incomplete with empty items.",
		}
	}
	parts = append(parts,
		"Return ONLY a JSON object shaped like: "+responseShape,
		"Extract ALL items mentioned, even if incomplete. Keep them in the order they were mentioned.",
		"If qty or rate is missing use null, never 0.",
		"Set status to complete ONLY if there is a customer name and every item has name, qty and rate.",
		"In missing_fields list what is missing: customer, item_N_qty, item_N_rate.",
	)
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the message, the OCR hint and the prior pending order.
func BuildUserPrompt(req OrderRequest) string {
	var b strings.Builder
	switch req.Kind {
	case constants.IMAGE:
		b.WriteString("Extract the order information from this handwritten note/bill image.")
		if hint := strings.TrimSpace(req.OCRHint); hint != "" {
			b.WriteString("\n\nOCR text of the same image (may be noisy, first ~2k chars):\n")
			b.WriteString(truncate(hint, 2000))
		}
		if t := strings.TrimSpace(req.Text); t != "" {
			b.WriteString("\n\nCaption: ")
			b.WriteString(t)
		}
	case constants.AUDIO:
		b.WriteString("Extract the order information from this voice note transcript: ")
		b.WriteString(strings.TrimSpace(req.Text))
	default:
		b.WriteString("Extract the order information from this message: ")
		b.WriteString(strings.TrimSpace(req.Text))
	}

	if req.Prior != nil {
		if pj, err := json.Marshal(req.Prior); err == nil {
			b.WriteString("\n\nPrevious partial order: ")
			b.Write(pj)
			b.WriteString("\nUpdate this with new information from the current message.")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "\n…(truncated)"
}
