package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lostfound/backend/config"
	"github.com/lostfound/backend/internal/domain"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registerValidators()

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics stay outside the rate limit
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		registerReportRoutes(v1.Group("/lost-items"), handler, domain.KindLost)
		registerReportRoutes(v1.Group("/found-items"), handler, domain.KindFound)

		matches := v1.Group("/matches")
		{
			matches.POST("", handler.CreateMatch)
			matches.GET("", handler.ListMatches)
			matches.PATCH("/:id", handler.UpdateMatchStatus)
		}

		v1.POST("/messages", handler.SendMessage)
		conversations := v1.Group("/conversations")
		{
			conversations.GET("", handler.ListConversations)
			conversations.GET("/:id/messages", handler.GetMessages)
		}

		v1.POST("/similarity", handler.Similarity)
		v1.POST("/rank", handler.Rank)
		v1.GET("/stats", handler.Stats)
	}

	return router
}

func registerReportRoutes(group *gin.RouterGroup, handler *Handler, kind domain.ReportKind) {
	group.POST("", handler.CreateReport(kind))
	group.GET("", handler.ListReports(kind))
	group.GET("/:id", handler.GetReport(kind))
	group.PATCH("/:id/status", handler.UpdateReportStatus(kind))
	group.GET("/:id/matches", handler.FindMatches(kind))
}

// registerValidators adds the domain enum tags to gin's validator
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("reportkind", func(fl validator.FieldLevel) bool {
		return domain.ReportKind(fl.Field().String()).Valid()
	})
}
