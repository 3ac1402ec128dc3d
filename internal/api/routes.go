package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeovahfialho/invest-analyzer/internal/config"
)

func SetupRoutes(app *fiber.App, handler *Handler, cfg *config.Config) {
	// Global middlewares
	app.Use(RequestID())
	app.Use(ErrorHandler())

	// Health checks (sem rate limiting)
	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.ReadinessCheck)

	// Metrics endpoint para Prometheus (sem rate limiting)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation (sem rate limiting)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 - com middlewares de rate limiting e métricas
	v1 := app.Group("/api/v1")
	v1.Use(RateLimiter())
	v1.Use(PrometheusMiddleware())

	// Segment routes
	segmentos := v1.Group("/segmentos")
	segmentos.Get("/", handler.ListSegments)
	segmentos.Get("/:id", handler.GetSegment)
	segmentos.Get("/:id/metricas", handler.GetSegmentMetrics)
	segmentos.Get("/:id/grafico", handler.GetSegmentChart)

	// Opportunity routes
	v1.Get("/oportunidades", handler.GetOpportunities)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(BasicAuth(cfg.AdminUser, cfg.AdminPassword))
	admin.Post("/load", handler.LoadData)
	admin.Post("/classify", handler.ClassifySegments)
	admin.Delete("/cache/:pattern", handler.InvalidateCache)
	admin.Get("/stats", handler.GetSystemStats)
}
