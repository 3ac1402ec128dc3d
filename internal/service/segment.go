package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/catalog"
	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

const cacheKeySegments = "segmentos:lista"

type SegmentService struct {
	pool  *pgxpool.Pool
	cache *cache.RedisCache
}

func NewSegmentService(pool *pgxpool.Pool, redisCache *cache.RedisCache) *SegmentService {
	return &SegmentService{
		pool:  pool,
		cache: redisCache,
	}
}

// SeedCatalog grava o catálogo fixo de segmentos, índices e vínculos numa
// transação única. Idempotente: reexecutar não duplica cadastros.
func (s *SegmentService) SeedCatalog(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, seg := range catalog.Segments() {
		_, err := tx.Exec(ctx, `
			INSERT INTO segmentos_investimento (nome, descricao)
			VALUES ($1, $2)
			ON CONFLICT (nome) DO NOTHING`,
			seg.Nome, seg.Descricao)
		if err != nil {
			return fmt.Errorf("erro ao gravar segmento %s: %w", seg.Nome, err)
		}
	}

	for _, idx := range catalog.Indices() {
		_, err := tx.Exec(ctx, `
			INSERT INTO indices (ticker, descricao, pais)
			VALUES ($1, $2, $3)
			ON CONFLICT (ticker) DO NOTHING`,
			idx.Ticker, idx.Descricao, idx.Pais)
		if err != nil {
			return fmt.Errorf("erro ao gravar índice %s: %w", idx.Ticker, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO indices_segmentos (id_indice, id_segmento, peso)
			SELECT i.id, s.id, $3
			FROM indices i, segmentos_investimento s
			WHERE i.ticker = $1 AND s.nome = $2
			ON CONFLICT (id_indice, id_segmento) DO NOTHING`,
			idx.Ticker, idx.Segmento, idx.Peso)
		if err != nil {
			return fmt.Errorf("erro ao vincular %s a %s: %w", idx.Ticker, idx.Segmento, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("erro no commit: %w", err)
	}

	logger.Info("catálogo semeado",
		zap.Int("segmentos", len(catalog.Segments())),
		zap.Int("indices", len(catalog.Indices())))

	return nil
}

// GetSegments lista os segmentos ativos com a contagem de índices vinculados.
func (s *SegmentService) GetSegments(ctx context.Context) ([]domain.SegmentSummary, error) {
	if s.cache != nil {
		var cached []domain.SegmentSummary
		if err := s.cache.Get(ctx, cacheKeySegments, &cached); err == nil {
			metrics.RecordCacheHit()
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("segment_list"))

	query := `
        SELECT
            s.id,
            s.nome,
            s.descricao,
            COUNT(si.id_indice) as total_indices
        FROM segmentos_investimento s
        LEFT JOIN indices_segmentos si ON si.id_segmento = s.id
        WHERE s.ativo = true
        GROUP BY s.id, s.nome, s.descricao
        ORDER BY s.nome
    `

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("segment_list", "error").Inc()
		return nil, fmt.Errorf("erro ao listar segmentos: %w", err)
	}
	defer rows.Close()

	var segments []domain.SegmentSummary
	for rows.Next() {
		var seg domain.SegmentSummary
		if err := rows.Scan(&seg.ID, &seg.Nome, &seg.Descricao, &seg.TotalIndices); err != nil {
			return nil, fmt.Errorf("erro ao escanear segmento: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar segmentos: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("segment_list", "success").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeySegments, segments); err != nil {
			// Log do erro de cache, mas não falha a operação
		}
	}

	return segments, nil
}

// GetSegment busca um segmento ativo por id. Devolve domain.ErrNotFound
// quando não existe.
func (s *SegmentService) GetSegment(ctx context.Context, id int) (*domain.Segment, error) {
	query := `
        SELECT id, nome, descricao, ativo, criado_em
        FROM segmentos_investimento
        WHERE id = $1 AND ativo = true
    `

	var seg domain.Segment
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&seg.ID,
		&seg.Nome,
		&seg.Descricao,
		&seg.Ativo,
		&seg.CriadoEm,
	)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar segmento: %w", err)
	}

	return &seg, nil
}
