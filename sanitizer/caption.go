package sanitizer

import (
	"regexp"
	"strings"
)

// NeutralPose replaces explicit vocabulary in captions sent to image generation.
const NeutralPose = "berpose cantik, sensual, dan aesthetic"

var (
	captionContent = regexp.MustCompile(`(?i)\[CAPTION:(.*?)\]`)
	explicitTerms  = regexp.MustCompile(`(?i)(memek|kontol|ngentot|peju|lendir|becek|pussy|dick|cock|sex|naked|nude|seks|sange|vulgar|porno|bugil|telanjang|coli|masturbasi|toket|nenen|pantat|boob|butt|ass|vagina|penis|porn)`)
)

// HasPhotoMarker reports whether the model asked for a photo to be sent.
// An unterminated marker still counts.
func HasPhotoMarker(raw string) bool {
	return strings.Contains(strings.ToUpper(raw), "[CAPTION:")
}

// ExtractCaption returns the trimmed content of the first complete marker.
func ExtractCaption(raw string) (string, bool) {
	m := captionContent.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// SanitizeForImageGen neutralizes explicit terms in a photo caption.
// Display text must never go through here.
func SanitizeForImageGen(caption string) string {
	return explicitTerms.ReplaceAllLiteralString(caption, NeutralPose)
}
