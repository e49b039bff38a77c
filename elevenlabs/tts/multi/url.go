package multi

import (
	"net/url"
	"strconv"
	"strings"
)

// ConnectConfig holds the multi-context stream endpoint options this package uses.
type ConnectConfig struct {
	// BaseURL defaults to "wss://api.elevenlabs.io".
	BaseURL string
	VoiceID string
	// APIKey is sent as the xi-api-key header.
	APIKey string

	ModelID           string
	LanguageCode      string
	OutputFormat      string
	InactivityTimeout int
	AutoMode          bool
}

func DefaultBaseURL() string { return "wss://api.elevenlabs.io" }

func BuildURL(cfg ConnectConfig) (string, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL()
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/v1/text-to-speech/" + url.PathEscape(cfg.VoiceID) + "/multi-stream-input")
	if err != nil {
		return "", err
	}

	q := u.Query()
	setIf := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIf("model_id", cfg.ModelID)
	setIf("language_code", cfg.LanguageCode)
	setIf("output_format", cfg.OutputFormat)
	if cfg.InactivityTimeout > 0 {
		q.Set("inactivity_timeout", strconv.Itoa(cfg.InactivityTimeout))
	}
	if cfg.AutoMode {
		q.Set("auto_mode", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
