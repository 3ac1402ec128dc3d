package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/analytics"
	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

type OpportunityService struct {
	pool           *pgxpool.Pool
	cache          *cache.RedisCache
	metricsService *MetricsService
	policy         analytics.Policy
	defaultDays    int
}

func NewOpportunityService(pool *pgxpool.Pool, redisCache *cache.RedisCache, metricsService *MetricsService, policy analytics.Policy, defaultDays int) *OpportunityService {
	if defaultDays <= 0 {
		defaultDays = 90
	}
	return &OpportunityService{
		pool:           pool,
		cache:          redisCache,
		metricsService: metricsService,
		policy:         policy,
		defaultDays:    defaultDays,
	}
}

// ClassifySegment analisa a janela do segmento, grava o sinal como snapshot
// e o devolve. Janela vazia gera HOLD com risco "unknown", nunca erro.
func (s *OpportunityService) ClassifySegment(ctx context.Context, segmentID, days int) (*domain.Opportunity, error) {
	if days <= 0 {
		days = s.defaultDays
	}

	name, series, err := s.metricsService.segmentWindow(ctx, segmentID, days)
	if err != nil {
		return nil, err
	}

	m := analytics.ComputeMetrics(segmentID, name, days, series)
	momentum := analytics.Momentum(series, days, s.policy.MomentumDivisor)
	c := analytics.Classify(m, momentum, s.policy)

	metrics.RecordClassification(string(c.Recommendation))

	opp := buildOpportunity(name, m, c)

	if err := s.saveOpportunity(ctx, opp); err != nil {
		return nil, err
	}

	logger.Info("segmento classificado",
		zap.String("segmento", name),
		zap.String("recomendacao", string(c.Recommendation)),
		zap.String("risco", string(c.RiskLevel)),
		zap.Float64("confianca", c.Confidence))

	return opp, nil
}

// ClassifyAll classifica todos os segmentos ativos em paralelo. O motor é
// puro e reentrante; cada goroutine grava o próprio snapshot. Falha num
// segmento não impede os demais.
func (s *OpportunityService) ClassifyAll(ctx context.Context, days int) ([]domain.Opportunity, error) {
	ids, err := s.activeSegmentIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make(chan *domain.Opportunity, len(ids))
	failures := make(chan error, len(ids))

	for _, id := range ids {
		go func(id int) {
			opp, err := s.ClassifySegment(ctx, id, days)
			if err != nil {
				failures <- fmt.Errorf("segmento %d: %w", id, err)
				return
			}
			results <- opp
		}(id)
	}

	var opportunities []domain.Opportunity
	var firstErr error

	for i := 0; i < len(ids); i++ {
		select {
		case opp := <-results:
			opportunities = append(opportunities, *opp)
		case err := <-failures:
			if firstErr == nil {
				firstErr = err
			}
			logger.Warn("falha ao classificar segmento", zap.Error(err))
		case <-ctx.Done():
			return opportunities, ctx.Err()
		}
	}

	if len(opportunities) == 0 && firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].IDSegmento < opportunities[j].IDSegmento
	})

	return opportunities, nil
}

// GetOpportunities lista sinais gravados. Sem histórico, devolve apenas o
// sinal mais recente de cada segmento.
func (s *OpportunityService) GetOpportunities(ctx context.Context, segmentID *int, includeHistory bool) ([]domain.Opportunity, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("opportunities"))

	query := `
        SELECT
            o.id, o.id_segmento, s.nome, o.titulo, o.descricao,
            o.tipo_oportunidade, o.data_analise, o.potencial_retorno,
            o.nivel_risco, o.confianca, o.ativo, o.criado_em
        FROM oportunidades_investimento o
        JOIN segmentos_investimento s ON s.id = o.id_segmento
        WHERE o.ativo = true
    `
	if !includeHistory {
		query = `
        SELECT DISTINCT ON (o.id_segmento)
            o.id, o.id_segmento, s.nome, o.titulo, o.descricao,
            o.tipo_oportunidade, o.data_analise, o.potencial_retorno,
            o.nivel_risco, o.confianca, o.ativo, o.criado_em
        FROM oportunidades_investimento o
        JOIN segmentos_investimento s ON s.id = o.id_segmento
        WHERE o.ativo = true
    `
	}

	args := []interface{}{}
	if segmentID != nil {
		query += " AND o.id_segmento = $1"
		args = append(args, *segmentID)
	}

	if includeHistory {
		query += " ORDER BY o.data_analise DESC, o.id DESC"
	} else {
		query += " ORDER BY o.id_segmento, o.data_analise DESC, o.id DESC"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("opportunities", "error").Inc()
		return nil, fmt.Errorf("erro ao buscar oportunidades: %w", err)
	}
	defer rows.Close()

	var opportunities []domain.Opportunity
	for rows.Next() {
		var (
			opp         domain.Opportunity
			tipo, risco string
		)
		err := rows.Scan(
			&opp.ID,
			&opp.IDSegmento,
			&opp.Segmento,
			&opp.Titulo,
			&opp.Descricao,
			&tipo,
			&opp.DataAnalise,
			&opp.PotencialRetorno,
			&risco,
			&opp.Confianca,
			&opp.Ativo,
			&opp.CriadoEm,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear oportunidade: %w", err)
		}

		opp.Tipo = domain.Recommendation(tipo)
		opp.NivelRisco = domain.RiskLevel(risco)
		opportunities = append(opportunities, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar oportunidades: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("opportunities", "success").Inc()
	return opportunities, nil
}

func (s *OpportunityService) activeSegmentIDs(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM segmentos_investimento WHERE ativo = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar segmentos: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("erro ao escanear id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar segmentos: %w", err)
	}

	return ids, nil
}

func (s *OpportunityService) saveOpportunity(ctx context.Context, opp *domain.Opportunity) error {
	query := `
        INSERT INTO oportunidades_investimento
            (id_segmento, titulo, descricao, tipo_oportunidade, data_analise,
             potencial_retorno, nivel_risco, confianca)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, criado_em
    `

	err := s.pool.QueryRow(ctx, query,
		opp.IDSegmento,
		opp.Titulo,
		opp.Descricao,
		string(opp.Tipo),
		opp.DataAnalise,
		opp.PotencialRetorno,
		string(opp.NivelRisco),
		opp.Confianca,
	).Scan(&opp.ID, &opp.CriadoEm)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("save_opportunity", "error").Inc()
		return fmt.Errorf("erro ao gravar oportunidade: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("save_opportunity", "success").Inc()
	return nil
}

// buildOpportunity monta o sinal persistível a partir da classificação.
func buildOpportunity(name string, m domain.SegmentMetrics, c analytics.Classification) *domain.Opportunity {
	var titulo string
	switch c.Recommendation {
	case domain.RecommendationBuy:
		titulo = fmt.Sprintf("Oportunidade de Compra - %s", name)
	case domain.RecommendationSell:
		titulo = fmt.Sprintf("Oportunidade de Venda - %s", name)
	default:
		titulo = fmt.Sprintf("Manter Posição - %s", name)
	}

	descricao := fmt.Sprintf(
		"Análise baseada em %d dias de dados históricos: retorno médio %.2f%%, momentum %.2f%%, volatilidade %.2f%% (%d amostras)",
		m.Dias, m.RetornoMedio, c.Momentum, m.Volatilidade, m.Amostras)

	return &domain.Opportunity{
		IDSegmento:       m.IDSegmento,
		Segmento:         name,
		Titulo:           titulo,
		Descricao:        descricao,
		Tipo:             c.Recommendation,
		DataAnalise:      time.Now().UTC(),
		PotencialRetorno: c.PotentialReturn,
		NivelRisco:       c.RiskLevel,
		Confianca:        c.Confidence,
		Ativo:            true,
	}
}
