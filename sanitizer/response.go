// Package sanitizer turns raw model output into text that is safe to show,
// speak, or forward to image generation.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	captionMarker = regexp.MustCompile(`(?i)\[CAPTION:.*?\]`)
	boldSpan      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	edgeQuotes    = regexp.MustCompile(`^\s*"\s*|\s*"\s*$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	plainEnglish  = regexp.MustCompile(`^[a-z\s',]+$`)
)

// strategyKeywords mark bold spans that carry planning notes instead of speech.
var strategyKeywords = []string{
	"flow", "thought", "strategy", "responding", "acknowledging", "internal",
	"action", "context", "persona", "mode", "gaspol", "escalated", "maintaining",
	"embracing", "transitioning", "focusing", "analyzing", "request",
}

var metaPrefixes = []string{
	"i'm now", "i am now", "as a", "my persona", "since the user", "embracing the",
}

var metaPhrases = []string{
	"escalated the conversation", "transitioning smoothly",
}

// slangMarkers keep an English-looking sentence when the persona is actually speaking.
var slangMarkers = []string{"gue", "lo"}

// CleanResponse strips caption markers, planning notes and English meta
// commentary from a model reply. It never fails; empty input yields "".
func CleanResponse(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.TrimSpace(captionMarker.ReplaceAllString(raw, ""))

	text = boldSpan.ReplaceAllStringFunc(text, func(span string) string {
		content := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(span, "**"), "**"))
		for _, key := range strategyKeywords {
			if strings.Contains(content, key) {
				return ""
			}
		}
		return span
	})

	sentences := splitSentences(text)
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if !isMetaSentence(s) {
			kept = append(kept, s)
		}
	}
	text = strings.Join(kept, " ")

	text = edgeQuotes.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func isMetaSentence(sentence string) bool {
	s := strings.ToLower(strings.TrimSpace(sentence))
	for _, p := range metaPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	for _, p := range metaPhrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	if len(strings.Split(s, " ")) <= 4 || !plainEnglish.MatchString(s) {
		return false
	}
	for _, m := range slangMarkers {
		if strings.Contains(s, m) {
			return false
		}
	}
	return true
}

// splitSentences cuts text at whitespace runs that follow '.', '!' or '?'.
// The punctuation stays with the sentence it ends.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		start = j
		i = j - 1
	}
	return append(out, string(runes[start:]))
}
