package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/console-university/internal/config"
	"github.com/jwebster45206/console-university/internal/events"
	"github.com/jwebster45206/console-university/internal/handlers"
	"github.com/jwebster45206/console-university/internal/logger"
	"github.com/jwebster45206/console-university/internal/middleware"
	internalstorage "github.com/jwebster45206/console-university/internal/storage"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"github.com/jwebster45206/console-university/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Console University API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"jim_policy", cfg.JimPolicy,
		"static_dir", cfg.StaticDir)

	world := scenario.LoadOrFallback(cfg.GameDataPath, log)
	log.Info("Game data loaded", "name", world.Name, "locations", len(world.Locations), "npcs", len(world.NPCs))

	var (
		store       storage.Storage
		broadcaster *events.Broadcaster
	)
	if cfg.RedisURL != "" {
		rs, err := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			log.Error("Invalid Redis configuration", "error", err)
			os.Exit(1)
		}
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer storageCancel()
		if err := rs.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = rs
		broadcaster = events.NewBroadcaster(rs.Client(), log)
	} else {
		log.Info("REDIS_URL not set, keeping sessions in memory")
		store = internalstorage.NewMemoryStorage(cfg.SessionTTL)
	}

	engine := dialogue.NewEngine(world, cfg.JimPolicy, log)
	var publisher events.Publisher
	if broadcaster != nil {
		publisher = broadcaster
	}
	sessions := handlers.NewSessions(engine, store, publisher, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	gameStateHandler := handlers.NewGameStateHandler(sessions, log)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/", gameStateHandler)

	mux.Handle("/v1/chat", handlers.NewChatHandler(sessions, log))
	mux.Handle("/v1/action", handlers.NewActionHandler(sessions, log))
	mux.Handle("/v1/menu/", handlers.NewMenuHandler(sessions, log))
	mux.Handle("/v1/play/", handlers.NewPlayHandler(sessions, log))

	if broadcaster != nil {
		mux.Handle("/v1/events/gamestate/", handlers.NewEventsHandler(broadcaster, log))
	}

	mux.Handle("/data/game.json", handlers.NewGameDataHandler(world, log))
	mux.Handle("/", handlers.NewStaticHandler(cfg.StaticDir, log))

	handler := middleware.LoggerWith(log, mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events endpoint streams
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
