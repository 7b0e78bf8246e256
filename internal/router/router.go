package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/handler"
	"github.com/stemsi/aiready-backend/internal/middleware"
	"github.com/stemsi/aiready-backend/internal/response"
	"github.com/stemsi/aiready-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Survey  *handler.SurveyHandler
}

// Services groups the services middlewares depend on.
type Services struct {
	Session *service.SessionService
	Gate    *service.GateService
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router, such as rate limiter cleanup.
func SetupRouter(
	ctx context.Context,
	services *Services,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

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
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Brotli())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireSession := middleware.RequireSession(services.Session)
	requireAccess := middleware.RequireAccess(services.Gate)

	// ─── 1. Sessions & Password Gate ───────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.NoStore())
	{
		sessions.POST("", handlers.Session.OpenSession)
		sessions.GET("/me", requireSession, handlers.Session.GetState)
		sessions.POST("/me/unlock", requireSession, handlers.Session.Unlock)
	}

	// ─── 2. Survey (Unlocked Sessions Only) ────────────────────────────
	survey := router.Group("/api/v1/survey")
	survey.Use(requireSession, requireAccess)
	{
		survey.GET("", middleware.CacheControl(300), handlers.Survey.GetSurvey)

		submit := []gin.HandlerFunc{middleware.NoStore()}
		if cfg.SubmitRatePerMinute > 0 {
			limiter := middleware.NewRateLimiter(ctx, cfg.SubmitRatePerMinute, time.Minute)
			submit = append(submit, limiter.Middleware())
		}
		submit = append(submit, handlers.Survey.Submit)
		survey.POST("/submissions", submit...)
	}

	return router
}
