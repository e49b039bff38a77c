// Package gemini binds the generation ports to the Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/sanitizer"
	"google.golang.org/genai"
)

type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

type Gemini_Model struct {
	TextModel   string
	ImageModel  string
	SpeechModel string
	Temperature float32

	client *genai.Client
	logger *log.Logger
}

func New(ctx context.Context, cfg Config) (*Gemini_Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini_Model{
		TextModel:   TextModel,
		ImageModel:  ImageModel,
		SpeechModel: SpeechModel,
		Temperature: DefaultTemperature,
		client:      client,
		logger:      log.New(os.Stdout, "[GEMINI] ", log.LstdFlags),
	}, nil
}

func (g *Gemini_Model) GenerateText(ctx context.Context, prompt string, cfg models.AgentConfig, history []models.HistoryTurn, image string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}

	var parts []*genai.Part
	if strings.Contains(image, ",") {
		if models.IsDataURI(cfg.ProfilePic) {
			if mime, data, err := models.ParseDataURI(cfg.ProfilePic); err == nil {
				parts = append(parts, genai.NewPartFromText(profileReferenceNote), genai.NewPartFromBytes(data, mime))
			} else {
				g.logger.Printf("skipping profile picture reference: %v", err)
			}
		}
		mime, data, err := models.ParseDataURI(image)
		if err != nil {
			return "", fmt.Errorf("invalid image attachment: %w", err)
		}
		parts = append(parts, genai.NewPartFromText(userImageNote), genai.NewPartFromBytes(data, mime))
	}
	if strings.TrimSpace(prompt) != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText("..."))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	temperature := g.Temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.TextModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(cfg), genai.RoleUser),
		Temperature:       &temperature,
		SafetySettings:    SafetySettings(),
	})
	if err != nil {
		return "", wrapError("text", err)
	}
	return resp.Text(), nil
}

func (g *Gemini_Model) GenerateImage(ctx context.Context, caption string, cfg models.AgentConfig) (string, error) {
	var parts []*genai.Part
	if strings.HasPrefix(cfg.ProfilePic, "data:") {
		mime, data, err := models.ParseDataURI(cfg.ProfilePic)
		if err != nil {
			return "", fmt.Errorf("invalid profile picture: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mime))
	} else if cfg.ProfilePic != "" {
		parts = append(parts, genai.NewPartFromText("My appearance reference: "+cfg.ProfilePic))
	}
	parts = append(parts, genai.NewPartFromText(imagePrompt(cfg, caption)))

	resp, err := g.client.Models.GenerateContent(ctx, g.ImageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{SafetySettings: SafetySettings()},
	)
	if err != nil {
		return "", wrapError("image", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", gateway.ErrSafetyBlocked
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return models.DataURI(mime, part.InlineData.Data), nil
	}
	return "", gateway.ErrSafetyBlocked
}

// SynthesizeSpeech speaks the cleaned text and returns base64 PCM.
func (g *Gemini_Model) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	clean := sanitizer.CleanResponse(text)
	if clean == "" {
		return "", gateway.ErrNoAudio
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.SpeechModel,
		[]*genai.Content{genai.NewContentFromText(clean, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityAudio)},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	)
	if err != nil {
		return "", wrapError("speech", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", gateway.ErrNoAudio
	}
	blob := resp.Candidates[0].Content.Parts[0].InlineData
	if blob == nil || len(blob.Data) == 0 {
		return "", gateway.ErrNoAudio
	}
	return base64.StdEncoding.EncodeToString(blob.Data), nil
}

// wrapError tags quota exhaustion with gateway.ErrQuotaExceeded so the
// gateway retries it.
func wrapError(op string, err error) error {
	if isQuotaAPIError(err) {
		return fmt.Errorf("gemini %s: %w: %w", op, gateway.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("gemini %s: %w", op, err)
}

func isQuotaAPIError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || strings.Contains(apiErr.Status, "RESOURCE_EXHAUSTED")
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || strings.Contains(apiErrPtr.Status, "RESOURCE_EXHAUSTED")
	}
	return false
}
