package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rag/config"
	"rag/model"
	"rag/store"
	"rag/types"
)

// ConfigHandler serves the runtime settings endpoints.
type ConfigHandler struct {
	cfg    *config.Runtime
	stores *store.Manager
}

func NewConfigHandler(cfg *config.Runtime, stores *store.Manager) *ConfigHandler {
	return &ConfigHandler{
		cfg:    cfg,
		stores: stores,
	}
}

func (h *ConfigHandler) HandleGetEmbedding(c *fiber.Ctx) error {
	return c.JSON(embeddingSettings(h.cfg.Embedding()))
}

// HandleSetEmbedding switches the active embedding provider. A google switch
// without a stored key is accepted; embeds fail with a missing-key error
// until one is supplied. Selecting a provider this binary was built without
// is rejected before anything is committed.
func (h *ConfigHandler) HandleSetEmbedding(c *fiber.Ctx) error {
	var params types.EmbeddingSettingsParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	known := params.Provider == config.ProviderOllama || params.Provider == config.ProviderGoogle
	if known && !model.Registered(params.Provider) {
		return fmt.Errorf("%w: %s", types.ErrCapabilityMissing, params.Provider)
	}

	updated, err := h.cfg.SetEmbedding(params.Provider, params.GoogleAPIKey)
	if err != nil {
		return err
	}

	settings := embeddingSettings(updated)
	return c.JSON(fiber.Map{
		"success":           true,
		"provider":          settings.Provider,
		"google_configured": settings.GoogleConfigured,
	})
}

func (h *ConfigHandler) HandleGetStorage(c *fiber.Ctx) error {
	return c.JSON(storageSettings(h.cfg.Storage(), nil))
}

// HandleSetStorage switches the active vector store. The candidate config is
// opened and probed first; a failed probe still commits the switch and shows
// up in connection_test, but unusable parameters reject it outright.
func (h *ConfigHandler) HandleSetStorage(c *fiber.Ctx) error {
	var params types.StorageSettingsParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	candidate, err := h.cfg.MergedStorage(params.Provider, params.PostgresDSN, params.SQLitePath)
	if err != nil {
		return err
	}

	result, err := h.stores.Switch(context.Background(), candidate)
	if err != nil {
		return err
	}
	h.cfg.CommitStorage(candidate)

	settings := storageSettings(candidate, result)
	return c.JSON(fiber.Map{
		"success":         true,
		"provider":        settings.Provider,
		"connection_test": settings.ConnectionTest,
	})
}

func (h *ConfigHandler) HandleTestStorage(c *fiber.Ctx) error {
	return c.JSON(h.stores.Test(context.Background()))
}

func embeddingSettings(cfg *config.EmbeddingConfig) *types.EmbeddingSettings {
	return &types.EmbeddingSettings{
		Provider:           cfg.Provider,
		GoogleConfigured:   cfg.GoogleAPIKey != "",
		GoogleAvailable:    model.GoogleAvailable(),
		AvailableProviders: model.Providers(),
		OllamaModel:        cfg.OllamaModel,
		GoogleModel:        cfg.GoogleModel,
	}
}

func storageSettings(cfg *config.StorageConfig, test *types.TestResult) *types.StorageSettings {
	s := &types.StorageSettings{
		Provider:       cfg.Provider,
		ConnectionTest: test,
	}
	// Connection params echo back only for the active backend; the DSN may
	// hold credentials, so just its presence is reported.
	switch cfg.Provider {
	case config.StoragePostgres:
		if cfg.PostgresDSN != "" {
			s.PostgresDSN = "configured"
		}
	case config.StorageSQLite:
		s.SQLitePath = cfg.SQLitePath
	}
	return s
}
