package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/api"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/config"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/core"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/logger"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/metrics"
	"github.com/MRidhoPratama251/AI-Chatbot-Apps/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	log := logger.New(config.AppConfig.LogLevel, config.AppConfig.LogPretty)

	// Initialize the in-memory store. All state is volatile: every boot
	// starts from the same sample data.
	memStore := store.NewMemStore()
	memStore.LoadSampleData()
	log.Info().Msg("in-memory store seeded with sample data")

	// Metrics registry
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize services
	replyDelay := time.Duration(config.AppConfig.ReplyDelayMS) * time.Millisecond
	scheduler := core.NewReplyScheduler(memStore, m, log, replyDelay)
	chatService := core.NewChatService(memStore, scheduler, m, log)
	usageService := core.NewUsageService(memStore, log)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, usageService, log)
	router := api.NewRouter(apiHandler, registry)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Info().Str("addr", serverAddr).Msg("starting server, press Ctrl+C to quit")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("addr", serverAddr).Msg("could not listen")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give active connections time to finish. Pending deferred replies are
	// not flushed; the store is volatile anyway.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting gracefully")
}
