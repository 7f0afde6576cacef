package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rag/app/server"
	"rag/config"
	"rag/store"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
}

func main() {
	cfg := config.Load()

	stores, err := store.NewManager(cfg.Storage())
	if err != nil {
		log.Fatal("error to open vector store: ", err)
	}

	// Schema init is best-effort at startup: the database may come up later
	// and can still be probed through the settings endpoints.
	ctx := context.Background()
	if err := stores.Current().Ping(ctx); err != nil {
		log.Printf("database init warning: %v", err)
	} else if err := stores.Current().Init(ctx); err != nil {
		log.Printf("database init warning: %v", err)
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	s := server.New(addr, cfg, stores)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}
