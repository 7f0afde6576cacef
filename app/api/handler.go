package api

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"rag/service"
	"rag/store"
	"rag/types"
)

// RequestHandler serves the document and search endpoints.
type RequestHandler struct {
	rag    *service.RAG
	stores *store.Manager
}

func NewRequestHandler(rag *service.RAG, stores *store.Manager) *RequestHandler {
	return &RequestHandler{
		rag:    rag,
		stores: stores,
	}
}

func (h *RequestHandler) HandleAddDocument(c *fiber.Ctx) error {
	var params types.DocumentParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	result, err := h.rag.IngestDocument(context.Background(), params.Title, params.Content)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"title":              result.Title,
		"chunks":             result.Chunks,
		"ids":                result.IDs,
		"tokens":             result.Tokens,
		"embedding_provider": result.Provider,
	})
}

func (h *RequestHandler) HandleListDocuments(c *fiber.Ctx) error {
	chunks, err := h.stores.Current().ListChunks(context.Background())
	if err != nil {
		return err
	}
	if chunks == nil {
		chunks = []types.Chunk{}
	}

	return c.JSON(fiber.Map{
		"documents": chunks,
		"count":     len(chunks),
	})
}

func (h *RequestHandler) HandleDeleteDocument(c *fiber.Ctx) error {
	title, err := url.PathUnescape(c.Params("title"))
	if err != nil || title == "" {
		return ErrBadRequest()
	}

	deleted, err := h.stores.Current().DeleteDocument(context.Background(), title)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound(title, "document")
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"deleted_chunks": deleted,
	})
}

func (h *RequestHandler) HandleSearch(c *fiber.Ctx) error {
	var params types.SearchParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	limit := service.DefaultSearchLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	results, provider, err := h.rag.Search(context.Background(), params.Query, limit)
	if err != nil {
		return err
	}
	if results == nil {
		results = []types.Chunk{}
	}

	return c.JSON(fiber.Map{
		"query":              params.Query,
		"results":            results,
		"count":              len(results),
		"embedding_provider": provider,
	})
}

func (h *RequestHandler) HandleEmbed(c *fiber.Ctx) error {
	var params types.EmbedParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	embedding, provider, err := h.rag.Embed(context.Background(), params.Text)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"embedding":  embedding,
		"dimensions": len(embedding),
		"provider":   provider,
	})
}
