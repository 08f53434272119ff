package cli

import (
	"log/slog"

	"github.com/eshaffer321/ledgermatch/internal/adapters/semantic"
	"github.com/eshaffer321/ledgermatch/internal/application/service"
	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/logging"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// NewSemanticMatcher creates the OpenAI-backed matcher from cfg.
// It returns nil without an API key; the engine then skips the fuzzy pass
// and labels every exception with the fallback category.
func NewSemanticMatcher(cfg *config.Config, logger *slog.Logger) matcher.SemanticMatcher {
	apiKey := cfg.GetAPIKey(cfg.OpenAI.APIKey, "OPENAI_API_KEY", "OPENAI_APIKEY")
	if apiKey == "" {
		logger.Warn("no OpenAI API key configured, semantic matching disabled")
		return nil
	}

	m, err := semantic.New(semantic.Config{
		APIKey:            apiKey,
		Model:             cfg.OpenAI.Model,
		BaseURL:           cfg.OpenAI.BaseURL,
		Timeout:           cfg.OpenAI.Timeout(),
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		Temperature:       semantic.DefaultConfig().Temperature,
	}, logging.WithComponent(logger, "semantic"))
	if err != nil {
		logger.Warn("failed to create semantic matcher", "error", err)
		return nil
	}
	return m
}

// NewReconcileService wires the engine and the optional store together.
func NewReconcileService(cfg *config.Config, store storage.Repository, logger *slog.Logger) *service.ReconcileService {
	engine := matcher.NewEngine(NewSemanticMatcher(cfg, logger), matcher.DefaultOptions(), logging.WithComponent(logger, "engine"))
	return service.NewReconcileService(engine, store, logging.WithComponent(logger, "service"))
}
