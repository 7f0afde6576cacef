package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"rag/app/api"
	"rag/config"
	"rag/service"
	"rag/store"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	cfg        *config.Runtime
	stores     *store.Manager
	logger     *slog.Logger
}

func New(addr string, cfg *config.Runtime, stores *store.Manager) *Server {
	return &Server{
		listenAddr: addr,
		cfg:        cfg,
		stores:     stores,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	var (
		app            = fiber.New(fiberConfig)
		rag            = service.New(s.cfg, s.stores)
		checkHandler   = api.NewCheckHandler(s.cfg, s.stores)
		requestHandler = api.NewRequestHandler(rag, s.stores)
		configHandler  = api.NewConfigHandler(s.cfg, s.stores)
		fileHandler    = api.NewFileHandler()
	)

	// The browser extension calls from arbitrary origins.
	app.Use(cors.New())

	app.Get("/", checkHandler.HandleRoot)
	app.Get("/health", checkHandler.HandleHealthy)

	app.Get("/settings/embedding", configHandler.HandleGetEmbedding)
	app.Post("/settings/embedding", configHandler.HandleSetEmbedding)
	app.Get("/settings/database", configHandler.HandleGetStorage)
	app.Post("/settings/database", configHandler.HandleSetStorage)
	app.Get("/settings/database/test", configHandler.HandleTestStorage)

	app.Post("/documents", requestHandler.HandleAddDocument)
	app.Get("/documents", requestHandler.HandleListDocuments)
	app.Delete("/documents/:title", requestHandler.HandleDeleteDocument)
	app.Post("/search", requestHandler.HandleSearch)
	app.Post("/embed", requestHandler.HandleEmbed)

	app.Post("/extract-file", fileHandler.HandleExtractFile)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
