package ingestion

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/quote"
	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

// Motivos de rejeição expostos na métrica price_bars_rejected_total.
const (
	reasonNullOHLC      = "ohlc_nulo"
	reasonPartialOHLC   = "ohlc_incompleto"
	reasonNegativeValue = "valor_negativo"
	reasonHighBelowLow  = "alta_menor_que_baixa"
	reasonOutsideRange  = "abertura_ou_fechamento_fora_do_intervalo"
)

// validateBar devolve o motivo de rejeição, ou vazio quando a barra é válida.
// A fonte emite OHLC todo nulo em feriados de alguns índices; qualquer outro
// nulo parcial é dado corrompido.
func validateBar(b quote.Bar) string {
	if b.Open == nil && b.High == nil && b.Low == nil && b.Close == nil {
		return reasonNullOHLC
	}
	if b.Open == nil || b.High == nil || b.Low == nil || b.Close == nil {
		return reasonPartialOHLC
	}
	if *b.Open < 0 || *b.High < 0 || *b.Low < 0 || *b.Close < 0 {
		return reasonNegativeValue
	}
	if *b.High < *b.Low {
		return reasonHighBelowLow
	}
	if *b.Open < *b.Low || *b.Open > *b.High || *b.Close < *b.Low || *b.Close > *b.High {
		return reasonOutsideRange
	}
	return ""
}

// normalizeBars filtra barras cruas e converte as válidas em linhas prontas
// para upsert. Volume nulo vira zero; fechamento ajustado nulo herda o
// fechamento. Devolve as linhas e a contagem de rejeitadas.
func normalizeBars(indexID int, ticker string, bars []quote.Bar) ([]domain.PriceBar, int64) {
	rows := make([]domain.PriceBar, 0, len(bars))
	var rejected int64

	for _, b := range bars {
		if reason := validateBar(b); reason != "" {
			rejected++
			metrics.BarsRejected.WithLabelValues(ticker, reason).Inc()
			logger.Warn("cotação rejeitada",
				zap.String("ticker", ticker),
				zap.Time("data", b.Date),
				zap.String("motivo", reason),
			)
			continue
		}

		adjClose := *b.Close
		if b.AdjClose != nil {
			adjClose = *b.AdjClose
		}
		var volume int64
		if b.Volume != nil {
			volume = *b.Volume
		}

		d := b.Date
		rows = append(rows, domain.PriceBar{
			IDIndice:           indexID,
			DataQuotacao:       time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Abertura:           decimal.NewFromFloat(*b.Open),
			Alta:               decimal.NewFromFloat(*b.High),
			Baixa:              decimal.NewFromFloat(*b.Low),
			Fechamento:         decimal.NewFromFloat(*b.Close),
			FechamentoAjustado: decimal.NewFromFloat(adjClose),
			Volume:             volume,
		})
	}

	return rows, rejected
}
