package app

import (
	"fmt"
	"time"

	"carelink/internal/authtoken"
	"carelink/internal/demo"
	"carelink/pkg/ai"
	"carelink/pkg/notify"
	"carelink/pkg/speech"
	"carelink/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store

	OracleAPIKey string
	OracleModel  string
	Oracle       ai.Oracle

	Pusher notify.Pusher
	Tokens *authtoken.Manager

	// optional capabilities
	Speech    speech.Synthesizer
	DemoCache *demo.SessionCache
}

// App wires storage, the AI oracle, and notification delivery together
// and owns the monitoring pipeline.
type App struct {
	store     store.Store
	oracle    ai.Oracle
	pusher    notify.Pusher
	tokens    *authtoken.Manager
	speech    speech.Synthesizer
	demoCache *demo.SessionCache

	now func() time.Time
}

// New constructs the application with database-backed storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	oracle := cfg.Oracle
	if oracle == nil {
		var err error
		oracle, err = ai.NewClaudeClient(cfg.OracleAPIKey, cfg.OracleModel)
		if err != nil {
			return nil, err
		}
	}

	pusher := cfg.Pusher
	if pusher == nil {
		pusher = notify.LogPusher{}
	}

	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token manager required")
	}

	return &App{
		store:     dataStore,
		oracle:    oracle,
		pusher:    pusher,
		tokens:    cfg.Tokens,
		speech:    cfg.Speech,
		demoCache: cfg.DemoCache,
		now:       time.Now,
	}, nil
}

// Tokens exposes the session token manager for the HTTP layer.
func (a *App) Tokens() *authtoken.Manager { return a.tokens }

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
