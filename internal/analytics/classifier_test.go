package analytics

import (
	"testing"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
)

func TestClassify(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		metrics  domain.SegmentMetrics
		momentum float64
		wantRec  domain.Recommendation
		wantRisk domain.RiskLevel
	}{
		{
			name:     "BuyWhenMomentumSustainsGain",
			metrics:  domain.SegmentMetrics{RetornoMedio: 1.0, Volatilidade: 1.0, Amostras: 30},
			momentum: 1.5,
			wantRec:  domain.RecommendationBuy,
			wantRisk: domain.RiskLow,
		},
		{
			name:     "BuyAtMomentumEqualToAverage",
			metrics:  domain.SegmentMetrics{RetornoMedio: 0.8, Volatilidade: 1.0, Amostras: 30},
			momentum: 0.8,
			wantRec:  domain.RecommendationBuy,
			wantRisk: domain.RiskLow,
		},
		{
			name:     "SellWhenMomentumConfirmsLoss",
			metrics:  domain.SegmentMetrics{RetornoMedio: -1.0, Volatilidade: 3.0, Amostras: 60},
			momentum: -2.0,
			wantRec:  domain.RecommendationSell,
			wantRisk: domain.RiskMedium,
		},
		{
			name:     "HoldWhenMomentumFades",
			metrics:  domain.SegmentMetrics{RetornoMedio: 1.0, Volatilidade: 1.0, Amostras: 30},
			momentum: 0.5,
			wantRec:  domain.RecommendationHold,
			wantRisk: domain.RiskLow,
		},
		{
			name:     "HoldWhenLossDecelerates",
			metrics:  domain.SegmentMetrics{RetornoMedio: -1.0, Volatilidade: 6.0, Amostras: 30},
			momentum: -0.5,
			wantRec:  domain.RecommendationHold,
			wantRisk: domain.RiskHigh,
		},
		{
			name:     "HoldOnFlatAverage",
			metrics:  domain.SegmentMetrics{RetornoMedio: 0, Volatilidade: 1.0, Amostras: 30},
			momentum: 2.0,
			wantRec:  domain.RecommendationHold,
			wantRisk: domain.RiskLow,
		},
		{
			name:     "EmptyWindowHoldsWithUnknownRisk",
			metrics:  domain.SegmentMetrics{},
			momentum: 0,
			wantRec:  domain.RecommendationHold,
			wantRisk: domain.RiskUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.metrics, tt.momentum, p)

			if got.Recommendation != tt.wantRec {
				t.Errorf("Recommendation = %s, want %s", got.Recommendation, tt.wantRec)
			}
			if got.RiskLevel != tt.wantRisk {
				t.Errorf("RiskLevel = %s, want %s", got.RiskLevel, tt.wantRisk)
			}
			if got.PotentialReturn != tt.metrics.RetornoMedio {
				t.Errorf("PotentialReturn = %v, want %v", got.PotentialReturn, tt.metrics.RetornoMedio)
			}
			if got.Momentum != tt.momentum {
				t.Errorf("Momentum = %v, want %v", got.Momentum, tt.momentum)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("Confidence = %v, fora de [0, 1]", got.Confidence)
			}
		})
	}
}

func TestClassifyRiskBoundaries(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		vol  float64
		want domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{2.0, domain.RiskLow},
		{2.01, domain.RiskMedium},
		{5.0, domain.RiskMedium},
		{5.01, domain.RiskHigh},
	}

	for _, tt := range tests {
		m := domain.SegmentMetrics{RetornoMedio: 1, Volatilidade: tt.vol, Amostras: 10}
		if got := Classify(m, 1, p).RiskLevel; got != tt.want {
			t.Errorf("vol %.2f: RiskLevel = %s, want %s", tt.vol, got, tt.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	p := DefaultPolicy()

	t.Run("ExactValue", func(t *testing.T) {
		// amostra 30/60=0.5, concordância 1, calma 1/(1+0.5)
		m := domain.SegmentMetrics{RetornoMedio: 1.0, Volatilidade: 1.0, Amostras: 30}
		got := Classify(m, 1.5, p).Confidence
		want := 0.4*0.5 + 0.3*1 + 0.3*(1.0/1.5)
		if !almostEqual(got, want) {
			t.Errorf("Confidence = %v, want %v", got, want)
		}
	})

	t.Run("SampleSaturates", func(t *testing.T) {
		small := domain.SegmentMetrics{RetornoMedio: 1, Volatilidade: 1, Amostras: 60}
		large := domain.SegmentMetrics{RetornoMedio: 1, Volatilidade: 1, Amostras: 600}
		if a, b := Classify(small, 1, p).Confidence, Classify(large, 1, p).Confidence; !almostEqual(a, b) {
			t.Errorf("confiança deveria saturar em SampleRef: %v != %v", a, b)
		}
	})

	t.Run("OpposedSignsLowerConfidence", func(t *testing.T) {
		m := domain.SegmentMetrics{RetornoMedio: 1.0, Volatilidade: 1.0, Amostras: 30}
		agree := Classify(m, 1.5, p).Confidence
		oppose := Classify(m, -1.5, p).Confidence
		if oppose >= agree {
			t.Errorf("sinais opostos deveriam reduzir a confiança: %v >= %v", oppose, agree)
		}
	})

	t.Run("ZeroMomentumIsNeutral", func(t *testing.T) {
		m := domain.SegmentMetrics{RetornoMedio: 1.0, Volatilidade: 1.0, Amostras: 30}
		got := Classify(m, 0, p).Confidence
		want := 0.4*0.5 + 0.3*0.5 + 0.3*(1.0/1.5)
		if !almostEqual(got, want) {
			t.Errorf("Confidence = %v, want %v", got, want)
		}
	})

	t.Run("HighVolatilityShrinksConfidence", func(t *testing.T) {
		calm := domain.SegmentMetrics{RetornoMedio: 1, Volatilidade: 0.5, Amostras: 60}
		wild := domain.SegmentMetrics{RetornoMedio: 1, Volatilidade: 12, Amostras: 60}
		if a, b := Classify(calm, 1, p).Confidence, Classify(wild, 1, p).Confidence; b >= a {
			t.Errorf("volatilidade alta deveria reduzir a confiança: %v >= %v", b, a)
		}
	})

	t.Run("EmptyWindowZero", func(t *testing.T) {
		if got := Classify(domain.SegmentMetrics{}, 0, p).Confidence; got != 0 {
			t.Errorf("Confidence = %v, want 0", got)
		}
	})
}
