package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ent0n29/chatterbox/internal/brain"
	"github.com/ent0n29/chatterbox/internal/chat"
	"github.com/ent0n29/chatterbox/internal/config"
	"github.com/ent0n29/chatterbox/internal/httpapi"
	"github.com/ent0n29/chatterbox/internal/intent"
	"github.com/ent0n29/chatterbox/internal/knowledge"
	"github.com/ent0n29/chatterbox/internal/memory"
	"github.com/ent0n29/chatterbox/internal/observability"
	"github.com/ent0n29/chatterbox/internal/sentiment"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	table, err := intent.LoadTable(cfg.IntentPath())
	if err != nil {
		log.Printf("intent table unavailable, serving without scripted intents: %v", err)
	} else {
		log.Printf("intent table loaded: %d intents", len(table.Intents))
	}

	ctx := context.Background()
	memoryStore, err := memory.NewStore(ctx, memory.Options{
		Path:        cfg.MemoryPath(),
		DatabaseURL: cfg.DatabaseURL,
		Cap:         cfg.MemoryCap,
		MinUserLen:  cfg.MemoryMinUserLen,
	})
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer memoryStore.Close()

	memoryBackend := "file"
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		memoryBackend = "postgres"
	}
	log.Printf("memory backend: %s", memoryBackend)

	knowledgeStore, err := knowledge.NewFileStore(cfg.KnowledgePath())
	if err != nil {
		log.Fatalf("knowledge store init failed: %v", err)
	}

	responder, err := brain.New(brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("brain init failed: %v", err)
	}

	brainMode := strings.ToLower(strings.TrimSpace(cfg.BrainMode))
	if brainMode == "auto" || brainMode == "" {
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			brainMode = "openai"
		} else {
			brainMode = "offline"
		}
	}
	log.Printf("brain mode: %s", brainMode)

	service := chat.NewService(chat.Options{
		Matcher:        intent.NewMatcher(table, nil),
		Classifier:     sentiment.NewClassifier(sentiment.NewVaderScorer()),
		Responder:      responder,
		Memory:         memoryStore,
		Knowledge:      knowledgeStore,
		Metrics:        metrics,
		ContextWindow:  cfg.MemoryContextWin,
		RequestTimeout: cfg.RequestTimeout,
		Rand:           rand.New(rand.NewSource(rand.Int63())),
	})

	api := httpapi.New(service, brainMode, memoryBackend)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
