package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"studymixer-backend/internal/config"
	"studymixer-backend/internal/database"
	"studymixer-backend/internal/handlers"
	"studymixer-backend/internal/repository"
	"studymixer-backend/internal/router"
	"studymixer-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Study-Mixer Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)

	// ──── Step 3: Optional Generation History (PostgreSQL) ────
	var historyRepo *repository.GenerationRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(pool); err != nil {
			log.Fatalf("✗ Database schema setup failed: %v", err)
		}
		historyRepo = repository.NewGenerationRepo(pool)
		log.Println("✓ PostgreSQL connected, generation history enabled")
	} else {
		log.Println("- Generation history disabled (no DATABASE_URL)")
	}

	// ──── Step 4: Optional Result Cache (Redis) ────
	var resultCache *services.ResultCache
	if cfg.RedisURL != "" {
		var redisClient *redis.Client
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()

		resultCache = services.NewResultCache(redisClient, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
		log.Println("✓ Redis connected, result cache enabled")
	} else {
		log.Println("- Result cache disabled (no REDIS_URL)")
	}

	// ──── Step 5: Assemble the Generation Pipeline ────
	fileExtractService := services.NewFileExtractService()
	assembler := services.NewAssembler(fileExtractService)
	generator := services.NewGeneratorService(geminiService, assembler, resultCache, historyRepo, cfg.TempDir)

	quizHandler := handlers.NewQuizHandler(generator, historyRepo, cfg.MaxUploadMB)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(quizHandler, cfg.GenerateRequestsPerMin, cfg.FrontendURL)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
		// Generation blocks the handler until the model answers, so the
		// write timeout has to cover a full model round trip.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Study-Mixer Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
