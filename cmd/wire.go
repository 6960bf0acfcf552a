package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/taleweaver/internal/adapters/llm/ollama"
	"github.com/bnema/taleweaver/internal/adapters/render/library"
	"github.com/bnema/taleweaver/internal/adapters/repo/jsonfile"
	"github.com/bnema/taleweaver/internal/application"
	"github.com/bnema/taleweaver/internal/config"
	"github.com/bnema/taleweaver/internal/domain"
	"github.com/bnema/taleweaver/internal/logging"
	"github.com/bnema/taleweaver/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg              config.Config
	logger           *zap.Logger
	store            *application.SessionStore
	llm              *ollama.Client
	narrator         *application.Narrator
	registry         *prometheus.Registry
	renderLibrary    func([]domain.Session, library.RenderOptions) (string, error)
	renderTranscript func(domain.Session, library.RenderOptions) (string, error)
	now              func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := config.Load(viper.New(), homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	repo, err := jsonfile.NewRepository(filepath.Join(cfg.DataDir, jsonfile.SavesDirName))
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	store := application.NewSessionStore(repo, ports.SystemClock{}, ports.UUIDGenerator{}, logger)
	store.Subscribe(application.ObserverFunc(func(event application.SessionEvent) {
		logger.Debug("session changed", zap.String("op", string(event.Op)), zap.String("session_id", string(event.ID)))
	}))
	if err := store.LoadAll(context.Background()); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	llm, err := ollama.NewClient(ollama.Options{
		BaseURL:      cfg.Ollama.BaseURL,
		Model:        cfg.Ollama.Model,
		PollInterval: cfg.Ollama.PollInterval,
		HTTPClient:   &http.Client{Timeout: cfg.Ollama.RequestTimeout},
		Registerer:   registry,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire ollama client: %w", err)
	}

	narrator := application.NewNarrator(store, llm, application.NarratorOptions{
		DefaultModel: cfg.Ollama.Model,
		HistoryTurns: cfg.History.Turns,
	}, logger)

	return &app{
		cfg:              cfg,
		logger:           logger,
		store:            store,
		llm:              llm,
		narrator:         narrator,
		registry:         registry,
		renderLibrary:    library.RenderLibrary,
		renderTranscript: library.RenderTranscript,
		now:              time.Now,
	}, nil
}
