package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/config"
	"github.com/helio/keyword-mapper/internal/db"
	"github.com/helio/keyword-mapper/internal/llm"
	"github.com/helio/keyword-mapper/internal/pipeline"
	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/source/adzuna"
	"github.com/helio/keyword-mapper/internal/source/apify"
	"github.com/helio/keyword-mapper/internal/source/linkedin"
)

// buildSources assembles the job-source cascade in preference order: the
// Apify LinkedIn actor when a token is configured, then Adzuna, then the
// credential-less LinkedIn guest endpoint as a last resort.
func buildSources(cfg *config.Config, log *zap.Logger) *source.Registry {
	var adapters []source.Adapter
	if cfg.ApifyToken != "" {
		adapters = append(adapters, apify.New(cfg.ApifyToken, log))
	}
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		adapters = append(adapters, adzuna.New(cfg.AdzunaAppID, cfg.AdzunaAppKey, log))
	}
	adapters = append(adapters, linkedin.New(log))
	return source.NewRegistry(adapters...)
}

// buildClients assembles the LLM preference chain: Gemini first, Groq as
// fallback. At least one credential is required.
func buildClients(ctx context.Context, cfg *config.Config) ([]llm.Client, error) {
	var clients []llm.Client
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			return nil, fmt.Errorf("creating Gemini client: %w", err)
		}
		clients = append(clients, gemini)
	}
	if cfg.GroqAPIKey != "" {
		groq, err := llm.NewGroqClient(cfg.GroqAPIKey, "")
		if err != nil {
			closeClients(clients)
			return nil, fmt.Errorf("creating Groq client: %w", err)
		}
		clients = append(clients, groq)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no LLM credentials configured: set GEMINI_API_KEY or GROQ_API_KEY")
	}
	return clients, nil
}

func closeClients(clients []llm.Client) {
	for _, c := range clients {
		_ = c.Close()
	}
}

// buildPipeline wires the full engine from config. The returned cleanup
// closes the LLM clients and the database pool.
func buildPipeline(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pipeline.Pipeline, func(), error) {
	clients, err := buildClients(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var store *db.DB
	if cfg.DatabaseURL != "" {
		store, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			closeClients(clients)
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
	}

	p := pipeline.New(pipeline.Options{
		Sources:      buildSources(cfg, log),
		Clients:      clients,
		Store:        store,
		Log:          log,
		BatchSize:    cfg.BatchSize,
		PollInterval: cfg.PollInterval,
		SoftTimeout:  cfg.CollectTimeout,
	})

	cleanup := func() {
		closeClients(clients)
		if store != nil {
			store.Close()
		}
	}
	return p, cleanup, nil
}
