package multi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/sanitizer"
	"github.com/google/uuid"
)

// PCM24k matches the raw 24 kHz mono 16-bit payload the Gemini voice returns.
const PCM24k = "pcm_24000"

// Synthesizer implements gateway.SpeechSynthesizer with one short-lived
// connection per utterance.
type Synthesizer struct {
	Connect ConnectConfig
	// Voices maps persona voice names to ElevenLabs voice ids. Unknown names
	// fall back to Connect.VoiceID.
	Voices map[string]string

	logger *log.Logger
}

func NewSynthesizer(cfg ConnectConfig) *Synthesizer {
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = PCM24k
	}
	return &Synthesizer{
		Connect: cfg,
		Voices:  map[string]string{},
		logger:  log.New(os.Stdout, "[ELEVENLABS] ", log.LstdFlags),
	}
}

func (s *Synthesizer) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	clean := sanitizer.CleanResponse(text)
	if clean == "" {
		return "", gateway.ErrNoAudio
	}

	cfg := s.Connect
	if id, ok := s.Voices[voice]; ok && id != "" {
		cfg.VoiceID = id
	}
	client, err := Dial(ctx, cfg, nil)
	if err != nil {
		return "", err
	}
	defer client.Close()

	contextID := uuid.NewString()
	if err := client.InitializeContext(ctx, contextID); err != nil {
		return "", err
	}
	if err := client.SendText(ctx, contextID, clean+" ", true); err != nil {
		return "", err
	}
	if err := client.CloseContext(ctx, contextID); err != nil {
		return "", err
	}

	var audio bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err := <-client.Errors():
			return "", fmt.Errorf("tts: stream: %w", err)
		case msg, ok := <-client.Events():
			if !ok {
				return finish(audio.Bytes(), errors.New("tts: connection closed before final chunk"))
			}
			if msg.ContextID != "" && msg.ContextID != contextID {
				continue
			}
			switch msg.Kind {
			case KindAudio:
				chunk, err := base64.StdEncoding.DecodeString(msg.AudioB64)
				if err != nil {
					s.logger.Printf("dropping undecodable chunk: %v", err)
					continue
				}
				audio.Write(chunk)
			case KindFinal:
				_ = client.CloseSocket(ctx)
				return finish(audio.Bytes(), nil)
			}
		}
	}
}

func finish(audio []byte, cause error) (string, error) {
	if len(audio) == 0 {
		if cause != nil {
			return "", fmt.Errorf("%w: %w", gateway.ErrNoAudio, cause)
		}
		return "", gateway.ErrNoAudio
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}
