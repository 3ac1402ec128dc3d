package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeovahfialho/invest-analyzer/internal/catalog"
	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/quote"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

// QuoteSource abstrai a fonte de cotações para permitir fakes nos testes.
type QuoteSource interface {
	GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]quote.Bar, error)
}

// PriceStore abstrai a persistência do histórico.
type PriceStore interface {
	ActiveIndices(ctx context.Context) ([]domain.Index, error)
	UpsertBars(ctx context.Context, bars []domain.PriceBar) (int64, error)
}

// Loader orquestra a carga: busca, valida e grava índice por índice.
// Sequencial de propósito: a fonte pune rajadas, e o limiter impõe o
// intervalo mínimo entre requisições.
type Loader struct {
	source  QuoteSource
	store   PriceStore
	limiter *rate.Limiter
	timeout time.Duration
}

func NewLoader(source QuoteSource, store PriceStore, minInterval, tickerTimeout time.Duration) *Loader {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	if tickerTimeout <= 0 {
		tickerTimeout = 30 * time.Second
	}
	return &Loader{
		source:  source,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		timeout: tickerTimeout,
	}
}

// LoadParams delimita uma execução de carga. Tickers vazio carrega todos os
// índices ativos do catálogo.
type LoadParams struct {
	Tickers []string
	From    time.Time
	To      time.Time
}

// Run executa a carga completa e devolve o relatório. Erro apenas para
// parâmetros inválidos; falha de índice individual entra no relatório e a
// execução segue para o próximo.
func (l *Loader) Run(ctx context.Context, params LoadParams) (*LoadReport, error) {
	if params.To.Before(params.From) {
		return nil, fmt.Errorf("intervalo inválido: fim %s anterior ao início %s",
			params.To.Format("2006-01-02"), params.From.Format("2006-01-02"))
	}

	report := newReport()
	logger.Info("carga iniciada",
		zap.String("run_id", report.RunID.String()),
		zap.Time("inicio", params.From),
		zap.Time("fim", params.To),
		zap.Strings("tickers", params.Tickers),
	)

	for _, idx := range l.targetIndices(ctx, params, report) {
		report.IndicesAttempted++

		if err := l.limiter.Wait(ctx); err != nil {
			report.recordFailure(idx.Ticker, "carga cancelada")
			continue
		}

		l.processIndex(ctx, idx, params, report)
	}

	report.finish()

	status := "ok"
	switch {
	case report.IndicesSucceeded == 0 && report.IndicesAttempted > 0:
		status = "falha"
	case len(report.Failures) > 0:
		status = "parcial"
	}
	metrics.LoadRuns.WithLabelValues(status).Inc()

	logger.Info("carga concluída",
		zap.String("run_id", report.RunID.String()),
		zap.String("status", status),
		zap.Int("tentados", report.IndicesAttempted),
		zap.Int("sucesso", report.IndicesSucceeded),
		zap.Int64("linhas", report.TotalRowsUpserted),
		zap.Int64("rejeitadas", report.TotalRowsRejected),
	)

	return report, nil
}

// targetIndices resolve os índices alvo da execução. Catálogo inacessível
// não derruba a carga: todos os alvos entram no relatório como falha e a
// lista devolvida é vazia.
func (l *Loader) targetIndices(ctx context.Context, params LoadParams, report *LoadReport) []domain.Index {
	indices, err := l.store.ActiveIndices(ctx)
	if err != nil {
		tickers := params.Tickers
		if len(tickers) == 0 {
			tickers = catalog.Tickers()
		}
		for _, t := range tickers {
			report.IndicesAttempted++
			report.recordFailure(t, err.Error())
		}
		logger.Error("catálogo de índices inacessível",
			zap.String("run_id", report.RunID.String()),
			zap.Error(err),
		)
		return nil
	}

	if len(params.Tickers) == 0 {
		return indices
	}

	want := make(map[string]bool, len(params.Tickers))
	for _, t := range params.Tickers {
		want[t] = true
	}

	var filtered []domain.Index
	for _, idx := range indices {
		if want[idx.Ticker] {
			filtered = append(filtered, idx)
			delete(want, idx.Ticker)
		}
	}
	for _, t := range params.Tickers {
		if want[t] {
			report.IndicesAttempted++
			report.recordFailure(t, "ticker não cadastrado")
		}
	}
	return filtered
}

// processIndex cobre busca, validação e gravação de um índice sob um
// timeout próprio. Qualquer falha fica contida no índice.
func (l *Loader) processIndex(ctx context.Context, idx domain.Index, params LoadParams, report *LoadReport) {
	timer := metrics.NewTimer()

	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	bars, err := l.source.GetHistory(tctx, idx.Ticker, params.From, params.To)
	if err != nil {
		reason := failureReason(tctx, err)
		report.recordFailure(idx.Ticker, reason)
		timer.ObserveDuration(metrics.LoadTickerDuration.WithLabelValues("erro"))
		logger.Warn("falha ao buscar cotações",
			zap.String("run_id", report.RunID.String()),
			zap.String("ticker", idx.Ticker),
			zap.String("motivo", reason),
		)
		return
	}

	rows, rejected := normalizeBars(idx.ID, idx.Ticker, bars)

	count, err := l.store.UpsertBars(tctx, rows)
	if err != nil {
		reason := failureReason(tctx, err)
		report.recordFailure(idx.Ticker, reason)
		timer.ObserveDuration(metrics.LoadTickerDuration.WithLabelValues("erro"))
		logger.Warn("falha ao gravar cotações",
			zap.String("run_id", report.RunID.String()),
			zap.String("ticker", idx.Ticker),
			zap.String("motivo", reason),
		)
		return
	}

	metrics.BarsUpserted.WithLabelValues(idx.Ticker).Add(float64(count))
	report.recordSuccess(idx.Ticker, count, rejected)

	if len(rows) > 0 {
		first, last := rows[0].DataQuotacao, rows[0].DataQuotacao
		for _, r := range rows[1:] {
			if r.DataQuotacao.Before(first) {
				first = r.DataQuotacao
			}
			if r.DataQuotacao.After(last) {
				last = r.DataQuotacao
			}
		}
		report.coverRange(first, last)
	}
	timer.ObserveDuration(metrics.LoadTickerDuration.WithLabelValues("ok"))

	logger.Info("índice carregado",
		zap.String("run_id", report.RunID.String()),
		zap.String("ticker", idx.Ticker),
		zap.Int64("linhas", count),
		zap.Int64("rejeitadas", rejected),
	)
}

// failureReason traduz o erro num motivo estável de relatório. Estouro do
// timeout por índice vira "timeout"; bloqueio da fonte vira "throttled".
func failureReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrThrottled):
		return "throttled"
	default:
		return err.Error()
	}
}
