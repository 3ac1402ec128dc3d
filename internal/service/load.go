package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/ingestion"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
)

// Padrões de cache derivados da janela de análise. Toda carga com linhas
// gravadas os invalida: leitura após a carga reflete os dados novos.
var analysisCachePatterns = []string{"metricas:*", "grafico:*", "segmentos:*"}

type LoadService struct {
	loader      *ingestion.Loader
	cache       *cache.RedisCache
	defaultDays int
}

func NewLoadService(loader *ingestion.Loader, redisCache *cache.RedisCache, defaultDays int) *LoadService {
	if defaultDays <= 0 {
		defaultDays = 730
	}
	return &LoadService{
		loader:      loader,
		cache:       redisCache,
		defaultDays: defaultDays,
	}
}

// Load executa a carga completa e devolve o relatório. From/To zerados
// assumem a janela incremental padrão terminando agora.
func (s *LoadService) Load(ctx context.Context, params ingestion.LoadParams) (*ingestion.LoadReport, error) {
	if params.To.IsZero() {
		params.To = time.Now().UTC()
	}
	if params.From.IsZero() {
		params.From = params.To.AddDate(0, 0, -s.defaultDays)
	}

	report, err := s.loader.Run(ctx, params)
	if err != nil {
		return nil, err
	}

	if report.TotalRowsUpserted > 0 && s.cache != nil {
		for _, pattern := range analysisCachePatterns {
			if err := s.cache.DeletePattern(ctx, pattern); err != nil {
				logger.Warn("falha ao invalidar cache",
					zap.String("pattern", pattern),
					zap.Error(err))
			}
		}
	}

	return report, nil
}
