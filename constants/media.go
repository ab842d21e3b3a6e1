package constants

import "strings"

// InputKind is the modality of an inbound message.
type InputKind string

const (
	TEXT  InputKind = "TEXT"
	AUDIO InputKind = "AUDIO"
	IMAGE InputKind = "IMAGE"
)

// DefaultImageMIME is used when the channel does not declare one.
const DefaultImageMIME = "image/jpeg"

// DefaultAudioMIME matches WhatsApp/Telegram voice notes.
const DefaultAudioMIME = "audio/ogg"

// MaxMediaMBDefault caps downloaded media.
const MaxMediaMBDefault = 16

// ClassifyMedia maps a declared media content type to an input kind.
// Without a media URL, or for any other content type, the message is TEXT.
func ClassifyMedia(mediaURL, contentType string) InputKind {
	if strings.TrimSpace(mediaURL) == "" {
		return TEXT
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return IMAGE
	case strings.HasPrefix(ct, "audio/"):
		return AUDIO
	default:
		return TEXT
	}
}

// ExtForMIME returns a file extension for common media types, without the dot.
func ExtForMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "audio/ogg", "audio/opus":
		return "ogg"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/amr":
		return "amr"
	default:
		return "bin"
	}
}
