// Package companion assembles the chat engine, its backend, its store and its
// HTTP surface into a runnable App.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Desarso/companion/elevenlabs/tts/multi"
	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models/gemini"
	"github.com/Desarso/companion/server"
	"github.com/Desarso/companion/sessions"
	"github.com/Desarso/companion/stores"
	"github.com/robfig/cron/v3"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config *Config
	Store  stores.KVStore
	Chat   *sessions.Chat
	Hub    *sessions.Hub
	Server *server.Server

	scheduler *cron.Cron
	logger    *log.Logger
}

// OpenStore connects the configured key-value store.
func OpenStore(cfg *Config) (stores.KVStore, error) {
	kv, err := stores.NewStore(stores.NewStoreConfig(cfg.StoreType, cfg.StoreDSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreType, err)
	}
	return kv, nil
}

// NewBackend builds the Gemini backend behind the quota retry gateway,
// with speech routed to ElevenLabs when configured.
func NewBackend(ctx context.Context, cfg *Config) (gateway.Backend, error) {
	model, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		return nil, err
	}
	gw := gateway.New(model)
	if cfg.Speech == SpeechElevenLabs {
		gw.WithSpeech(multi.NewSynthesizer(multi.ConnectConfig{
			APIKey:  cfg.ElevenLabsAPIKey,
			VoiceID: cfg.ElevenLabsVoiceID,
			ModelID: cfg.ElevenLabsModelID,
		}))
	}
	return gw, nil
}

func NewApp(ctx context.Context, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	kv, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	app, err := newApp(cfg, kv, backend)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *Config, kv stores.KVStore, backend gateway.Backend) (*App, error) {
	chat, err := sessions.NewChat(backend, stores.NewState(kv))
	if err != nil {
		return nil, err
	}
	if cfg.PersonaFile != "" {
		persona, err := LoadPersona(cfg.PersonaFile)
		if err != nil {
			return nil, err
		}
		if _, err := chat.UpdateConfig(persona); err != nil {
			return nil, err
		}
	}

	hub := sessions.NewHub()
	chat.WithPublisher(hub)

	app := &App{
		Config: cfg,
		Store:  kv,
		Chat:   chat,
		Hub:    hub,
		Server: server.New(chat, hub),
		logger: log.New(os.Stdout, "[APP] ", log.LstdFlags),
	}
	if cfg.RetentionSchedule != "" {
		app.scheduler = cron.New()
		maxAge := cfg.RetentionMaxAge
		if _, err := app.scheduler.AddFunc(cfg.RetentionSchedule, func() {
			chat.PruneSessions(maxAge)
		}); err != nil {
			return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.RetentionSchedule, err)
		}
	}
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start()
		a.logger.Printf("[RETENTION] pruning sessions older than %s on %q", a.Config.RetentionMaxAge, a.Config.RetentionSchedule)
	}

	srv := &http.Server{Addr: a.Config.Addr, Handler: a.Server.Router()}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Printf("listening on %s", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close stops the retention job, waits for pending speech and closes the store.
func (a *App) Close() error {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	a.Chat.Wait()
	return a.Store.Close()
}
