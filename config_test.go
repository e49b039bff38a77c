package companion

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"COMPANION_ADDR", "GEMINI_API_KEY", "GEMINI_BASE_URL", "COMPANION_STORE", "COMPANION_DSN",
		"COMPANION_SPEECH", "ELEVENLABS_API_KEY", "ELEVENLABS_VOICE_ID", "ELEVENLABS_MODEL_ID",
		"COMPANION_PERSONA", "COMPANION_RETENTION", "COMPANION_RETENTION_MAX_AGE",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := configFromEnv(NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.StoreType != "sqlite" || cfg.StoreDSN != "companion.sqlite" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.Speech != SpeechGemini || cfg.RetentionSchedule != "" || cfg.RetentionMaxAge != DefaultRetentionMaxAge {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_ADDR", ":9090")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("COMPANION_STORE", "postgres")
	t.Setenv("COMPANION_DSN", "host=db user=anya")
	t.Setenv("COMPANION_SPEECH", "elevenlabs")
	t.Setenv("ELEVENLABS_API_KEY", "xi")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice")
	t.Setenv("COMPANION_RETENTION", "@daily")
	t.Setenv("COMPANION_RETENTION_MAX_AGE", "72h")

	cfg, err := configFromEnv(NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || cfg.GeminiAPIKey != "key" || cfg.StoreDSN != "host=db user=anya" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.Speech != SpeechElevenLabs || cfg.ElevenLabsVoiceID != "voice" {
		t.Errorf("Expected elevenlabs speech, got %+v", cfg)
	}
	if cfg.RetentionSchedule != "@daily" || cfg.RetentionMaxAge != 72*time.Hour {
		t.Errorf("Unexpected retention %q %s", cfg.RetentionSchedule, cfg.RetentionMaxAge)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]*Config{
		"unknown store":        NewConfig().WithAddr(":1"),
		"postgres without dsn": NewConfig().WithPostgresStore(""),
		"elevenlabs no key":    NewConfig().WithElevenLabsSpeech("", "voice"),
		"retention no age":     NewConfig().WithRetention("@daily", 0),
	}
	cases["unknown store"].StoreType = "redis"
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
	if err := NewConfig().WithMemoryStore().WithRetention("@hourly", time.Hour).Validate(); err != nil {
		t.Errorf("Expected a valid config, got %v", err)
	}
}

func TestPostgresStoreNeedsDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_STORE", "postgres")
	if _, err := configFromEnv(NewConfig()); err == nil {
		t.Error("Expected an error for postgres without COMPANION_DSN")
	}
}

func TestBadRetentionAge(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_RETENTION_MAX_AGE", "a month")
	if _, err := configFromEnv(NewConfig()); err == nil {
		t.Error("Expected an error for an unparseable duration")
	}
}

func TestLoadPersona(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persona.yaml")
	data := "name: Sasa\npersonality: kalem dan suka baca buku\nvoice: Puck\nprofile_pic: https://example.com/sasa.jpg\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPersona(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Sasa" || cfg.Voice != "Puck" || cfg.ProfilePic != "https://example.com/sasa.jpg" {
		t.Errorf("Unexpected persona %+v", cfg)
	}
	if cfg.Blur != 15 || cfg.Transparency != 40 {
		t.Errorf("Expected missing fields to keep defaults, got %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("name: \"\"\n"), 0o644)
	if _, err := LoadPersona(bad); err == nil {
		t.Error("Expected an error for a persona without a name")
	}
	if _, err := LoadPersona(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
