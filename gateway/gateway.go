// Package gateway defines the generation backend ports and the retry policy
// applied to every call that goes through them.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Desarso/companion/models"
)

var (
	// ErrQuotaExceeded marks rate limit or quota exhaustion. It is the only
	// error class that is retried.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrSafetyBlocked means the call succeeded but returned no content.
	ErrSafetyBlocked = errors.New("safety blocked")
	ErrNoAudio       = errors.New("no audio returned")
)

const (
	DefaultRetries = 1
	DefaultBackoff = 1500 * time.Millisecond
)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, cfg models.AgentConfig, history []models.HistoryTurn, image string) (string, error)
}

type ImageGenerator interface {
	// GenerateImage returns the picture as a data URI.
	GenerateImage(ctx context.Context, caption string, cfg models.AgentConfig) (string, error)
}

type SpeechSynthesizer interface {
	// SynthesizeSpeech returns base64 encoded 24 kHz mono 16-bit PCM.
	SynthesizeSpeech(ctx context.Context, text, voice string) (string, error)
}

type Backend interface {
	TextGenerator
	ImageGenerator
	SpeechSynthesizer
}

// IsQuotaError recognizes wrapped ErrQuotaExceeded as well as raw errors
// whose message carries a 429 or RESOURCE_EXHAUSTED signal.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// Gateway wraps a Backend with the quota retry policy.
type Gateway struct {
	backend Backend
	speech  SpeechSynthesizer
	retries int
	backoff time.Duration
	logger  *log.Logger
}

func New(backend Backend) *Gateway {
	return &Gateway{
		backend: backend,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		logger:  log.New(os.Stdout, "[GATEWAY] ", log.LstdFlags),
	}
}

func (g *Gateway) WithRetries(n int) *Gateway {
	if n < 0 {
		n = 0
	}
	g.retries = n
	return g
}

func (g *Gateway) WithBackoff(d time.Duration) *Gateway {
	g.backoff = d
	return g
}

// WithSpeech routes speech synthesis to s instead of the backend.
func (g *Gateway) WithSpeech(s SpeechSynthesizer) *Gateway {
	g.speech = s
	return g
}

func (g *Gateway) WithLogger(l *log.Logger) *Gateway {
	g.logger = l
	return g
}

func (g *Gateway) GenerateText(ctx context.Context, prompt string, cfg models.AgentConfig, history []models.HistoryTurn, image string) (string, error) {
	return withRetry(ctx, g, "text", func() (string, error) {
		return g.backend.GenerateText(ctx, prompt, cfg, history, image)
	})
}

func (g *Gateway) GenerateImage(ctx context.Context, caption string, cfg models.AgentConfig) (string, error) {
	return withRetry(ctx, g, "image", func() (string, error) {
		return g.backend.GenerateImage(ctx, caption, cfg)
	})
}

func (g *Gateway) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	var s SpeechSynthesizer = g.backend
	if g.speech != nil {
		s = g.speech
	}
	return withRetry(ctx, g, "speech", func() (string, error) {
		return s.SynthesizeSpeech(ctx, text, voice)
	})
}

func withRetry(ctx context.Context, g *Gateway, op string, call func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsQuotaError(err) || attempt == g.retries {
			break
		}
		g.logger.Printf("%s generation hit quota, retrying in %s (attempt %d/%d)", op, g.backoff, attempt+1, g.retries)
		timer := time.NewTimer(g.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%s generation: %w", op, errors.Join(lastErr, ctx.Err()))
		case <-timer.C:
		}
	}
	return "", lastErr
}
