package companion

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Desarso/companion/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SpeechGemini     = "gemini"
	SpeechElevenLabs = "elevenlabs"

	DefaultRetentionMaxAge = 30 * 24 * time.Hour
)

// Config holds everything needed to assemble an App.
type Config struct {
	Addr string

	GeminiAPIKey  string
	GeminiBaseURL string

	// StoreType is "sqlite", "postgres" or "memory". StoreDSN is the SQLite
	// file path or the Postgres DSN.
	StoreType string
	StoreDSN  string

	Speech            string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	// PersonaFile, when set, replaces the stored persona at startup.
	PersonaFile string

	// RetentionSchedule is a cron spec for pruning archived sessions older
	// than RetentionMaxAge. Empty disables pruning.
	RetentionSchedule string
	RetentionMaxAge   time.Duration
}

// NewConfig creates a configuration with default values
func NewConfig() *Config {
	return &Config{
		Addr:            ":8080",
		StoreType:       "sqlite",
		StoreDSN:        "companion.sqlite",
		Speech:          SpeechGemini,
		RetentionMaxAge: DefaultRetentionMaxAge,
	}
}

func (c *Config) WithAddr(addr string) *Config {
	c.Addr = addr
	return c
}

func (c *Config) WithGeminiAPIKey(key string) *Config {
	c.GeminiAPIKey = key
	return c
}

// WithSQLiteStore stores state in the SQLite file at path.
func (c *Config) WithSQLiteStore(path string) *Config {
	c.StoreType = "sqlite"
	c.StoreDSN = path
	return c
}

func (c *Config) WithPostgresStore(dsn string) *Config {
	c.StoreType = "postgres"
	c.StoreDSN = dsn
	return c
}

// WithMemoryStore keeps state for the lifetime of the process only.
func (c *Config) WithMemoryStore() *Config {
	c.StoreType = "memory"
	c.StoreDSN = ""
	return c
}

// WithElevenLabsSpeech sends speech synthesis to ElevenLabs instead of Gemini.
func (c *Config) WithElevenLabsSpeech(apiKey, voiceID string) *Config {
	c.Speech = SpeechElevenLabs
	c.ElevenLabsAPIKey = apiKey
	c.ElevenLabsVoiceID = voiceID
	return c
}

func (c *Config) WithPersonaFile(path string) *Config {
	c.PersonaFile = path
	return c
}

func (c *Config) WithRetention(schedule string, maxAge time.Duration) *Config {
	c.RetentionSchedule = schedule
	c.RetentionMaxAge = maxAge
	return c
}

func (c *Config) Validate() error {
	switch c.StoreType {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store type: %s", c.StoreType)
	}
	if c.StoreType == "postgres" && c.StoreDSN == "" {
		return errors.New("postgres store needs COMPANION_DSN")
	}
	switch c.Speech {
	case SpeechGemini:
	case SpeechElevenLabs:
		if c.ElevenLabsAPIKey == "" || c.ElevenLabsVoiceID == "" {
			return errors.New("elevenlabs speech needs ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID")
		}
	default:
		return fmt.Errorf("unsupported speech provider: %s", c.Speech)
	}
	if c.RetentionSchedule != "" && c.RetentionMaxAge <= 0 {
		return errors.New("retention needs a positive max age")
	}
	return nil
}

// LoadConfig reads a .env file when present, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	} else if err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return configFromEnv(NewConfig())
}

func configFromEnv(c *Config) (*Config, error) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.Addr, "COMPANION_ADDR")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&c.StoreType, "COMPANION_STORE")
	setString(&c.StoreDSN, "COMPANION_DSN")
	setString(&c.Speech, "COMPANION_SPEECH")
	setString(&c.ElevenLabsAPIKey, "ELEVENLABS_API_KEY")
	setString(&c.ElevenLabsVoiceID, "ELEVENLABS_VOICE_ID")
	setString(&c.ElevenLabsModelID, "ELEVENLABS_MODEL_ID")
	setString(&c.PersonaFile, "COMPANION_PERSONA")
	setString(&c.RetentionSchedule, "COMPANION_RETENTION")

	if v := os.Getenv("COMPANION_RETENTION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPANION_RETENTION_MAX_AGE: %w", err)
		}
		c.RetentionMaxAge = d
	}
	if c.StoreType != "sqlite" && os.Getenv("COMPANION_DSN") == "" {
		c.StoreDSN = ""
	}
	return c, c.Validate()
}

// LoadPersona reads a YAML persona file. Fields missing from the file keep
// the default persona's values.
func LoadPersona(path string) (models.AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.AgentConfig{}, fmt.Errorf("failed to read persona: %w", err)
	}
	cfg := models.DefaultAgentConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.AgentConfig{}, fmt.Errorf("failed to parse persona %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return models.AgentConfig{}, fmt.Errorf("persona %s has no name", path)
	}
	return cfg, nil
}
