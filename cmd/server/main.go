package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/chat"
	"github.com/classora/classora-backend/internal/config"
	"github.com/classora/classora-backend/internal/database"
	"github.com/classora/classora-backend/internal/handler"
	"github.com/classora/classora-backend/internal/llm"
	"github.com/classora/classora-backend/internal/logger"
	"github.com/classora/classora-backend/internal/repository"
	"github.com/classora/classora-backend/internal/router"
	"github.com/classora/classora-backend/internal/timetable"
	"github.com/classora/classora-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("timetable_source", cfg.TimetableSource).
		Msg("Starting Classora Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Timetable ────────────────────────────────────────────────
	// Loaded once, validated, and read-only afterwards. Serving never
	// touches the source again.
	var table *timetable.Table
	switch cfg.TimetableSource {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		table, err = repository.NewTimetableRepository(pool).LoadTable(ctx)
		pool.Close() // Startup-only dependency.
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load timetable from PostgreSQL")
		}
	default:
		var err error
		table, err = timetable.LoadFile(cfg.TimetablePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load timetable JSON")
		}
	}
	log.Info().Strs("classes", table.Classes()).Msg("Timetable loaded")

	// ─── Gateway State (Memory or Redis) ───────────────────────────────
	var history chat.HistoryStore
	var limiter chat.Limiter
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		history = chat.NewRedisHistory(rdb, cfg.ChatHistoryLimit)
		limiter = chat.NewRedisLimiter(rdb, cfg.ChatCooldown)
	} else {
		history = chat.NewMemoryHistory(cfg.ChatHistoryLimit)
		limiter = chat.NewMemoryLimiter(cfg.ChatCooldown)
	}

	// ─── Completion Client & Gateway ───────────────────────────────────
	if cfg.LLMAPIKey == "" {
		log.Warn().Msg("LLM_API_KEY is empty; completion calls will be rejected upstream")
	}
	completer := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, log)
	chatService := chat.NewService(completer, history, limiter, table, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Schedule: handler.NewScheduleHandler(table),
		Chat:     handler.NewChatHandler(chatService, log),
		WS:       handler.NewWSHandler(chatService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
