package api

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/ingestion"
	"github.com/jeovahfialho/invest-analyzer/internal/service"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/postgres"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
)

type Handler struct {
	db                 *postgres.DB
	cacheService       *cache.RedisCache
	segmentService     *service.SegmentService
	metricsService     *service.MetricsService
	opportunityService *service.OpportunityService
	loadService        *service.LoadService
}

func NewHandler(
	db *postgres.DB,
	cacheService *cache.RedisCache,
	segmentService *service.SegmentService,
	metricsService *service.MetricsService,
	opportunityService *service.OpportunityService,
	loadService *service.LoadService,
) *Handler {
	return &Handler{
		db:                 db,
		cacheService:       cacheService,
		segmentService:     segmentService,
		metricsService:     metricsService,
		opportunityService: opportunityService,
		loadService:        loadService,
	}
}

func (h *Handler) ListSegments(c *fiber.Ctx) error {
	segments, err := h.segmentService.GetSegments(c.Context())
	if err != nil {
		logger.Error("erro ao listar segmentos", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao listar segmentos",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  segments,
		"count": len(segments),
	})
}

func (h *Handler) GetSegment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "id de segmento inválido",
			Code:  fiber.StatusBadRequest,
		})
	}

	segment, err := h.segmentService.GetSegment(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: fmt.Sprintf("segmento %d não encontrado", id),
				Code:  fiber.StatusNotFound,
			})
		}

		logger.Error("erro ao buscar segmento",
			zap.Int("segmento", id),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao buscar segmento",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(segment)
}

func (h *Handler) GetSegmentMetrics(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "id de segmento inválido",
			Code:  fiber.StatusBadRequest,
		})
	}

	dias, err := parseDias(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  fiber.StatusBadRequest,
		})
	}

	result, err := h.metricsService.GetSegmentMetrics(c.Context(), id, dias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: fmt.Sprintf("segmento %d não encontrado", id),
				Code:  fiber.StatusNotFound,
			})
		}

		logger.Error("erro ao calcular métricas",
			zap.Int("segmento", id),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao calcular métricas",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(result)
}

func (h *Handler) GetSegmentChart(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "id de segmento inválido",
			Code:  fiber.StatusBadRequest,
		})
	}

	dias, err := parseDias(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  fiber.StatusBadRequest,
		})
	}

	chart, err := h.metricsService.GetChart(c.Context(), id, dias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: fmt.Sprintf("segmento %d não encontrado", id),
				Code:  fiber.StatusNotFound,
			})
		}

		logger.Error("erro ao montar gráfico",
			zap.Int("segmento", id),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "erro ao montar gráfico",
			Code:  fiber.StatusInternalServerError,
		})
	}

	return c.JSON(fiber.Map{
		"id_segmento": id,
		"series":      chart,
	})
}

func (h *Handler) GetOpportunities(c *fiber.Ctx) error {
	var segmentID *int
	if raw := c.Query("segmento"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "segmento deve ser um inteiro positivo",
				Code:  fiber.StatusBadRequest,
			})
		}
		segmentID = &id
	}

	includeHistory := c.QueryBool("historico", false)

	opportunities, err := h.opportunityService.GetOpportunities(c.Context(), segmentID, includeHistory)
	if err != nil {
		logger.Error("erro ao buscar oportunidades", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao buscar oportunidades",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  opportunities,
		"count": len(opportunities),
	})
}

func (h *Handler) ClassifySegments(c *fiber.Ctx) error {
	dias, err := parseDias(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  fiber.StatusBadRequest,
		})
	}

	opportunities, err := h.opportunityService.ClassifyAll(c.Context(), dias)
	if err != nil {
		logger.Error("erro ao classificar segmentos", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao classificar segmentos",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  opportunities,
		"count": len(opportunities),
	})
}

func (h *Handler) LoadData(c *fiber.Ctx) error {
	var req LoadRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "corpo da requisição inválido",
			Code:  fiber.StatusBadRequest,
		})
	}

	params, err := loadParamsFromRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  fiber.StatusBadRequest,
		})
	}

	if req.Async {
		jobID := generateJobID()

		go func() {
			report, err := h.loadService.Load(context.Background(), params)
			if err != nil {
				logger.Error("erro na carga assíncrona",
					zap.String("job_id", jobID),
					zap.Error(err))
				return
			}
			logger.Info("carga assíncrona concluída",
				zap.String("job_id", jobID),
				zap.String("run_id", report.RunID.String()),
				zap.Int64("linhas", report.TotalRowsUpserted))
		}()

		return c.JSON(LoadResponse{
			JobID:   jobID,
			Status:  "processing",
			Message: "carga iniciada",
		})
	}

	report, err := h.loadService.Load(c.Context(), params)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  fiber.StatusBadRequest,
		})
	}

	status := "completed"
	if report.IndicesSucceeded == 0 && report.IndicesAttempted > 0 {
		status = "failed"
	}

	return c.JSON(LoadResponse{
		Status:  status,
		Message: fmt.Sprintf("%d de %d índices carregados", report.IndicesSucceeded, report.IndicesAttempted),
		Report:  report,
	})
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Version:   "1.0.0",
		Timestamp: time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]ServiceHealth)

	dbStart := time.Now()
	if err := h.db.HealthCheck(ctx); err != nil {
		services["database"] = ServiceHealth{
			Status: "unhealthy",
			Error:  err.Error(),
		}
	} else {
		services["database"] = ServiceHealth{
			Status:  "healthy",
			Latency: time.Since(dbStart).String(),
		}
	}

	if h.cacheService == nil {
		services["redis"] = ServiceHealth{
			Status: "unavailable",
		}
	} else {
		redisStart := time.Now()
		if err := h.cacheService.HealthCheck(ctx); err != nil {
			services["redis"] = ServiceHealth{
				Status: "unhealthy",
				Error:  err.Error(),
			}
		} else {
			services["redis"] = ServiceHealth{
				Status:  "healthy",
				Latency: time.Since(redisStart).String(),
			}
		}
	}

	// Redis opcional: só o banco decide a prontidão
	status := "ready"
	if services["database"].Status != "healthy" {
		status = "not_ready"
	}

	response := HealthResponse{
		Status:    status,
		Version:   "1.0.0",
		Timestamp: time.Now(),
		Services:  services,
	}

	if status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}

func (h *Handler) InvalidateCache(c *fiber.Ctx) error {
	pattern := c.Params("pattern", "*")

	if h.cacheService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "cache não disponível",
			Code:  fiber.StatusServiceUnavailable,
		})
	}

	if err := h.cacheService.DeletePattern(c.Context(), pattern); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao invalidar cache",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("cache invalidado para padrão: %s", pattern),
	})
}

func (h *Handler) GetSystemStats(c *fiber.Ctx) error {
	dbStats := h.db.Stats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := SystemStatsResponse{
		Database: DatabaseStats{
			ActiveConnections: dbStats.AcquiredConns(),
			IdleConnections:   dbStats.IdleConns(),
			TotalConnections:  dbStats.TotalConns(),
			WaitCount:         dbStats.EmptyAcquireCount(),
			WaitDuration:      dbStats.AcquireDuration().String(),
		},
		Cache: CacheStats{
			MemoryUsed: fmt.Sprintf("%d MB", m.Alloc/1024/1024),
		},
		API: APIStats{
			ActiveGoroutines: runtime.NumGoroutine(),
		},
	}

	return c.JSON(response)
}

// parseDias lê o parâmetro de janela. Ausente devolve zero e o serviço
// aplica o padrão; presente tem de ser um inteiro positivo.
func parseDias(c *fiber.Ctx) (int, error) {
	raw := c.Query("dias")
	if raw == "" {
		return 0, nil
	}

	dias, err := strconv.Atoi(raw)
	if err != nil || dias <= 0 {
		return 0, fmt.Errorf("dias deve ser um inteiro positivo")
	}
	return dias, nil
}

// loadParamsFromRequest valida e converte o corpo da requisição de carga.
func loadParamsFromRequest(req LoadRequest) (ingestion.LoadParams, error) {
	params := ingestion.LoadParams{Tickers: req.Tickers}

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return params, fmt.Errorf("formato de data inicial inválido (use YYYY-MM-DD)")
		}
		params.From = from
	}

	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return params, fmt.Errorf("formato de data final inválido (use YYYY-MM-DD)")
		}
		params.To = to
	}

	if !params.From.IsZero() && !params.To.IsZero() && params.To.Before(params.From) {
		return params, fmt.Errorf("data final anterior à data inicial")
	}

	return params, nil
}

func generateJobID() string {
	return fmt.Sprintf("job_%d_%s", time.Now().Unix(), randomString(8))
}

func getRequestID(c *fiber.Ctx) string {
	if id := c.Locals("requestID"); id != nil {
		return id.(string)
	}
	return ""
}
