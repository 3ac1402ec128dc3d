// Package analytics contém o motor de métricas e o classificador de
// oportunidades. Funções puras: mesma janela de entrada, mesmo resultado.
package analytics

import (
	"time"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/pkg/stats"
)

// Point é uma barra diária já validada, pronta para análise.
type Point struct {
	Date   time.Time
	Close  float64
	High   float64
	Low    float64
	Volume int64
}

// Series é o histórico de um índice dentro da janela, ordenado por data.
type Series struct {
	Ticker string
	Points []Point
}

func closes(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// pooledReturns concatena os retornos diários de cada série numa única
// distribuição. Retornos nunca cruzam séries: cada série contribui os seus.
func pooledReturns(series []Series) []float64 {
	var pooled []float64
	for _, s := range series {
		pooled = append(pooled, stats.Returns(closes(s.Points))...)
	}
	return pooled
}

// ComputeMetrics agrega a janela de um segmento em métricas descritivas.
// Janela vazia devolve métricas zeradas com Amostras == 0, nunca erro.
func ComputeMetrics(segmentID int, name string, days int, series []Series) domain.SegmentMetrics {
	m := domain.SegmentMetrics{
		IDSegmento: segmentID,
		Segmento:   name,
		Dias:       days,
	}

	var (
		first, last time.Time
		seen        bool
	)
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		m.Indices++
		for _, p := range s.Points {
			if !seen {
				m.PrecoMaximo = p.High
				m.PrecoMinimo = p.Low
				first, last = p.Date, p.Date
				seen = true
			} else {
				if p.High > m.PrecoMaximo {
					m.PrecoMaximo = p.High
				}
				if p.Low < m.PrecoMinimo {
					m.PrecoMinimo = p.Low
				}
				if p.Date.Before(first) {
					first = p.Date
				}
				if p.Date.After(last) {
					last = p.Date
				}
			}
			m.VolumeTotal += p.Volume
		}
	}
	m.PeriodoInicio = first
	m.PeriodoFim = last

	pooled := pooledReturns(series)
	m.Amostras = len(pooled)
	m.RetornoMedio = stats.Mean(pooled)
	m.Volatilidade = stats.StdDev(pooled)

	return m
}

// Momentum é a média dos últimos k retornos de cada série, com
// k = max(1, days/divisor). Comparado ao retorno médio da janela inteira
// indica aceleração ou reversão da tendência.
func Momentum(series []Series, days, divisor int) float64 {
	if divisor < 1 {
		divisor = 1
	}
	k := days / divisor
	if k < 1 {
		k = 1
	}

	var recent []float64
	for _, s := range series {
		returns := stats.Returns(closes(s.Points))
		if len(returns) == 0 {
			continue
		}
		start := len(returns) - k
		if start < 0 {
			start = 0
		}
		recent = append(recent, returns[start:]...)
	}
	return stats.Mean(recent)
}
