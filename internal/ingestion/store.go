package ingestion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
)

// Store é a porta de escrita do histórico de preços. Só a carga escreve em
// historico_precos; os serviços de análise apenas leem.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ActiveIndices lista os índices ativos na ordem de cadastro.
func (s *Store) ActiveIndices(ctx context.Context) ([]domain.Index, error) {
	query := `
		SELECT id, ticker, descricao, pais, ativo, criado_em
		FROM indices
		WHERE ativo = true
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao listar índices: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var indices []domain.Index
	for rows.Next() {
		var idx domain.Index
		if err := rows.Scan(&idx.ID, &idx.Ticker, &idx.Descricao, &idx.Pais, &idx.Ativo, &idx.CriadoEm); err != nil {
			return nil, fmt.Errorf("%w: erro ao ler índice: %v", domain.ErrPersistence, err)
		}
		indices = append(indices, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: erro ao percorrer índices: %v", domain.ErrPersistence, err)
	}

	return indices, nil
}

const upsertBarSQL = `
	INSERT INTO historico_precos
		(id_indice, data_quotacao, abertura, alta, baixa, fechamento, fechamento_ajustado, volume)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id_indice, data_quotacao) DO UPDATE SET
		abertura = EXCLUDED.abertura,
		alta = EXCLUDED.alta,
		baixa = EXCLUDED.baixa,
		fechamento = EXCLUDED.fechamento,
		fechamento_ajustado = EXCLUDED.fechamento_ajustado,
		volume = EXCLUDED.volume
`

// UpsertBars grava o lote numa transação única. Recarregar o mesmo intervalo
// atualiza as linhas existentes em vez de duplicá-las.
func (s *Store) UpsertBars(ctx context.Context, bars []domain.PriceBar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: erro ao iniciar transação: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(upsertBarSQL,
			b.IDIndice, b.DataQuotacao, b.Abertura, b.Alta, b.Baixa,
			b.Fechamento, b.FechamentoAjustado, b.Volume)
	}

	results := tx.SendBatch(ctx, batch)
	for range bars {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("%w: erro no upsert: %v", domain.ErrPersistence, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("%w: erro ao fechar batch: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: erro no commit: %v", domain.ErrPersistence, err)
	}

	return int64(len(bars)), nil
}
