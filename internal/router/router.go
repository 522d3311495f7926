package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classora/classora-backend/internal/config"
	"github.com/classora/classora-backend/internal/handler"
	"github.com/classora/classora-backend/internal/middleware"
	"github.com/classora/classora-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Schedule *handler.ScheduleHandler
	Chat     *handler.ChatHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally. Completion endpoints are exempt:
	// streamed replies must reach the client chunk by chunk, and buffering
	// them up to the compression threshold would stall the first token.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Skipper: func(c *gin.Context) bool {
			return strings.HasPrefix(c.Request.URL.Path, "/ai/")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Schedule (Public) ─────────────────────────────────────────────
	// Class list and the week view are static for the process lifetime;
	// let clients cache them briefly. Current-period output is
	// time-sensitive and stays uncached.
	router.GET("/get_all_classes", middleware.CacheControl(300), handlers.Schedule.GetAllClasses)
	router.GET("/get_full_week", middleware.CacheControl(300), handlers.Schedule.GetFullWeek)
	router.GET("/get_day_schedule", handlers.Schedule.GetDaySchedule)
	router.GET("/get_current_period", handlers.Schedule.GetCurrentPeriod)

	// ─── AI Completions (Rate Limited) ─────────────────────────────────
	// Per-IP token bucket on top of the gateway's own per-user cooldown.
	aiLimiter := middleware.NewRateLimiter(30, time.Minute)

	ai := router.Group("/ai")
	ai.Use(aiLimiter.Middleware())
	{
		ai.POST("/chat", handlers.Chat.Chat)
		ai.POST("/code", handlers.Chat.Code)
		ai.POST("/define", handlers.Chat.Define)
		ai.POST("/explain", handlers.Chat.Explain)
		ai.POST("/quiz", handlers.Chat.Quiz)
		ai.POST("/summary", handlers.Chat.Summary)
		ai.POST("/feedback", handlers.Chat.Feedback)
		ai.POST("/notes", handlers.Chat.Notes)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/chat", handlers.WS.ChatStream)
	}

	return router
}
