package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/analytics"
	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

type MetricsService struct {
	pool        *pgxpool.Pool
	cache       *cache.RedisCache
	defaultDays int
}

func NewMetricsService(pool *pgxpool.Pool, redisCache *cache.RedisCache, defaultDays int) *MetricsService {
	if defaultDays <= 0 {
		defaultDays = 90
	}
	return &MetricsService{
		pool:        pool,
		cache:       redisCache,
		defaultDays: defaultDays,
	}
}

// GetSegmentMetrics calcula as métricas da janela de um segmento. A janela
// ancora na última data disponível, não em time.Now: dados parados no tempo
// continuam analisáveis.
func (s *MetricsService) GetSegmentMetrics(ctx context.Context, segmentID, days int) (*domain.SegmentMetrics, error) {
	if days <= 0 {
		days = s.defaultDays
	}

	cacheKey := fmt.Sprintf("metricas:seg:%d:dias:%d", segmentID, days)
	if s.cache != nil {
		var cached domain.SegmentMetrics
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			metrics.RecordCacheHit()
			metrics.RecordMetricsRequest(true)
			return &cached, nil
		}
		metrics.RecordCacheMiss()
	}
	metrics.RecordMetricsRequest(false)

	name, series, err := s.segmentWindow(ctx, segmentID, days)
	if err != nil {
		return nil, err
	}

	m := analytics.ComputeMetrics(segmentID, name, days, series)

	logger.Debug("métricas calculadas",
		zap.Int("segmento", segmentID),
		zap.Int("dias", days),
		zap.Int("amostras", m.Amostras))

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, m); err != nil {
			// Log do erro de cache, mas não falha a operação
		}
	}

	return &m, nil
}

// GetChart devolve as séries de fechamento do segmento no formato do front,
// indexadas por ticker.
func (s *MetricsService) GetChart(ctx context.Context, segmentID, days int) (map[string]domain.ChartSeries, error) {
	if days <= 0 {
		days = s.defaultDays
	}

	cacheKey := fmt.Sprintf("grafico:seg:%d:dias:%d", segmentID, days)
	if s.cache != nil {
		var cached map[string]domain.ChartSeries
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			metrics.RecordCacheHit()
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	_, series, err := s.segmentWindow(ctx, segmentID, days)
	if err != nil {
		return nil, err
	}

	chart := make(map[string]domain.ChartSeries, len(series))
	for _, sr := range series {
		cs := domain.ChartSeries{
			Datas:  make([]string, 0, len(sr.Points)),
			Precos: make([]float64, 0, len(sr.Points)),
		}
		for _, p := range sr.Points {
			cs.Datas = append(cs.Datas, p.Date.Format("2006-01-02"))
			cs.Precos = append(cs.Precos, p.Close)
		}
		chart[sr.Ticker] = cs
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, chart); err != nil {
			// Log do erro de cache, mas não falha a operação
		}
	}

	return chart, nil
}

// segmentWindow carrega as séries do segmento dentro da janela de N dias
// contados a partir da última data_quotacao gravada. Devolve o nome do
// segmento e uma série por índice, ordenada por data.
func (s *MetricsService) segmentWindow(ctx context.Context, segmentID, days int) (string, []analytics.Series, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT nome FROM segmentos_investimento WHERE id = $1 AND ativo = true`,
		segmentID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil, domain.ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("erro ao buscar segmento: %w", err)
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("segment_window"))

	query := `
        WITH ref AS (
            SELECT MAX(hp.data_quotacao) AS max_data
            FROM historico_precos hp
            JOIN indices_segmentos si ON si.id_indice = hp.id_indice
            WHERE si.id_segmento = $1
        )
        SELECT
            i.ticker,
            hp.data_quotacao,
            hp.fechamento,
            hp.alta,
            hp.baixa,
            hp.volume
        FROM historico_precos hp
        JOIN indices_segmentos si ON si.id_indice = hp.id_indice
        JOIN indices i ON i.id = hp.id_indice
        CROSS JOIN ref
        WHERE si.id_segmento = $1
          AND hp.data_quotacao > ref.max_data - $2::int
        ORDER BY i.ticker, hp.data_quotacao
    `

	rows, err := s.pool.Query(ctx, query, segmentID, days)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("segment_window", "error").Inc()
		return "", nil, fmt.Errorf("erro ao buscar janela do segmento: %w", err)
	}
	defer rows.Close()

	var series []analytics.Series
	cur := -1
	for rows.Next() {
		var (
			ticker                  string
			data                    time.Time
			fechamento, alta, baixa decimal.Decimal
			volume                  int64
		)
		if err := rows.Scan(&ticker, &data, &fechamento, &alta, &baixa, &volume); err != nil {
			return "", nil, fmt.Errorf("erro ao escanear cotação: %w", err)
		}

		if cur < 0 || series[cur].Ticker != ticker {
			series = append(series, analytics.Series{Ticker: ticker})
			cur = len(series) - 1
		}
		series[cur].Points = append(series[cur].Points, analytics.Point{
			Date:   data,
			Close:  fechamento.InexactFloat64(),
			High:   alta.InexactFloat64(),
			Low:    baixa.InexactFloat64(),
			Volume: volume,
		})
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("erro ao iterar cotações: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("segment_window", "success").Inc()
	return name, series, nil
}
