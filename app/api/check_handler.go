package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"rag/config"
	"rag/model"
	"rag/store"
)

type CheckHandler struct {
	cfg    *config.Runtime
	stores *store.Manager
}

func NewCheckHandler(cfg *config.Runtime, stores *store.Manager) *CheckHandler {
	return &CheckHandler{
		cfg:    cfg,
		stores: stores,
	}
}

func (h *CheckHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "RAG knowledge base",
	})
}

func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	count, err := h.stores.Current().Count(context.Background())
	if err != nil {
		return c.JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":             "healthy",
		"documents":          count,
		"embedding_provider": h.cfg.Embedding().Provider,
		"database_provider":  h.cfg.Storage().Provider,
		"google_available":   model.GoogleAvailable(),
	})
}
