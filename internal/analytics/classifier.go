package analytics

import (
	"math"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
)

// Policy parametriza o classificador. Limiares de risco em percentual de
// volatilidade diária; os pesos de confiança somam 1.
type Policy struct {
	MomentumDivisor int
	RiskLowMax      float64
	RiskMediumMax   float64
	SampleWeight    float64
	AgreementWeight float64
	VolWeight       float64
	SampleRef       int
}

func DefaultPolicy() Policy {
	return Policy{
		MomentumDivisor: 4,
		RiskLowMax:      2.0,
		RiskMediumMax:   5.0,
		SampleWeight:    0.4,
		AgreementWeight: 0.3,
		VolWeight:       0.3,
		SampleRef:       60,
	}
}

// Classification é a saída pura do classificador, antes de virar uma
// domain.Opportunity persistida.
type Classification struct {
	Recommendation  domain.Recommendation
	RiskLevel       domain.RiskLevel
	PotentialReturn float64
	Confidence      float64
	Momentum        float64
}

// Classify aplica a regra de recomendação sobre métricas já agregadas.
//
// BUY quando o retorno médio é positivo e o momentum o sustenta; SELL quando
// o retorno médio é negativo e o momentum confirma a queda; HOLD nos demais
// casos. Janela sem amostras devolve HOLD com risco desconhecido e confiança
// zero, nunca erro.
func Classify(m domain.SegmentMetrics, momentum float64, p Policy) Classification {
	if m.Amostras == 0 {
		return Classification{
			Recommendation: domain.RecommendationHold,
			RiskLevel:      domain.RiskUnknown,
		}
	}

	avg := m.RetornoMedio

	rec := domain.RecommendationHold
	switch {
	case avg > 0 && momentum >= avg:
		rec = domain.RecommendationBuy
	case avg < 0 && momentum <= avg:
		rec = domain.RecommendationSell
	}

	risk := domain.RiskHigh
	switch {
	case m.Volatilidade <= p.RiskLowMax:
		risk = domain.RiskLow
	case m.Volatilidade <= p.RiskMediumMax:
		risk = domain.RiskMedium
	}

	return Classification{
		Recommendation:  rec,
		RiskLevel:       risk,
		PotentialReturn: avg,
		Confidence:      confidence(m, momentum, p),
		Momentum:        momentum,
	}
}

// confidence combina tamanho da amostra, concordância de sinal entre retorno
// médio e momentum, e o inverso da volatilidade. Sempre em [0, 1].
func confidence(m domain.SegmentMetrics, momentum float64, p Policy) float64 {
	sample := float64(m.Amostras) / float64(p.SampleRef)
	if sample > 1 {
		sample = 1
	}

	var agreement float64
	switch {
	case m.RetornoMedio > 0 && momentum > 0, m.RetornoMedio < 0 && momentum < 0:
		agreement = 1
	case m.RetornoMedio == 0 || momentum == 0:
		agreement = 0.5
	}

	calm := 1 / (1 + m.Volatilidade/2)

	c := p.SampleWeight*sample + p.AgreementWeight*agreement + p.VolWeight*calm
	return math.Min(1, math.Max(0, c))
}
