package analytics

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testWindow() []Series {
	return []Series{
		{
			Ticker: "^GSPC",
			Points: []Point{
				{Date: day(2), Close: 100, High: 101, Low: 99, Volume: 1000},
				{Date: day(3), Close: 102, High: 103, Low: 101, Volume: 1000},
				{Date: day(4), Close: 101, High: 102, Low: 100, Volume: 1000},
				{Date: day(5), Close: 105, High: 106, Low: 104, Volume: 1000},
			},
		},
		{
			Ticker: "^DJI",
			Points: []Point{
				{Date: day(2), Close: 50, High: 51, Low: 49, Volume: 500},
				{Date: day(3), Close: 51, High: 52, Low: 50, Volume: 500},
			},
		},
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(3, "Mercado Amplo - EUA", 90, testWindow())

	if m.IDSegmento != 3 || m.Segmento != "Mercado Amplo - EUA" || m.Dias != 90 {
		t.Errorf("identificação = (%d, %q, %d)", m.IDSegmento, m.Segmento, m.Dias)
	}
	if m.Indices != 2 {
		t.Errorf("Indices = %d, want 2", m.Indices)
	}

	// Retornos agrupados: 3 do ^GSPC + 1 do ^DJI
	if m.Amostras != 4 {
		t.Errorf("Amostras = %d, want 4", m.Amostras)
	}
	wantMean := (2 - 0.9803921568627451 + 3.9603960396039604 + 2) / 4
	if !almostEqual(m.RetornoMedio, wantMean) {
		t.Errorf("RetornoMedio = %v, want %v", m.RetornoMedio, wantMean)
	}
	if m.Volatilidade <= 0 {
		t.Errorf("Volatilidade = %v, want > 0", m.Volatilidade)
	}

	if m.PrecoMaximo != 106 {
		t.Errorf("PrecoMaximo = %v, want 106", m.PrecoMaximo)
	}
	if m.PrecoMinimo != 49 {
		t.Errorf("PrecoMinimo = %v, want 49", m.PrecoMinimo)
	}
	if m.VolumeTotal != 5000 {
		t.Errorf("VolumeTotal = %d, want 5000", m.VolumeTotal)
	}
	if !m.PeriodoInicio.Equal(day(2)) || !m.PeriodoFim.Equal(day(5)) {
		t.Errorf("período = %v a %v, want %v a %v", m.PeriodoInicio, m.PeriodoFim, day(2), day(5))
	}
}

func TestComputeMetricsEmptyWindow(t *testing.T) {
	m := ComputeMetrics(9, "Energia", 90, nil)

	if m.Amostras != 0 || m.Indices != 0 {
		t.Errorf("Amostras = %d, Indices = %d, want 0, 0", m.Amostras, m.Indices)
	}
	if m.RetornoMedio != 0 || m.Volatilidade != 0 {
		t.Errorf("estatísticas = (%v, %v), want zeradas", m.RetornoMedio, m.Volatilidade)
	}
}

// Os retornos são agrupados numa distribuição única: cada retorno pesa igual,
// independente de qual série o produziu.
func TestComputeMetricsPoolsReturns(t *testing.T) {
	series := []Series{
		{Ticker: "A", Points: []Point{
			{Date: day(2), Close: 100},
			{Date: day(3), Close: 110},
		}},
		{Ticker: "B", Points: []Point{
			{Date: day(2), Close: 100},
			{Date: day(3), Close: 101},
			{Date: day(4), Close: 102.01},
		}},
	}

	m := ComputeMetrics(1, "Teste", 30, series)

	// Agrupado: (10 + 1 + 1) / 3 = 4. A média das médias daria 5.5.
	if !almostEqual(m.RetornoMedio, 4) {
		t.Errorf("RetornoMedio = %v, want 4", m.RetornoMedio)
	}
}

func TestMomentum(t *testing.T) {
	window := testWindow()

	t.Run("LastReturnOfEachSeries", func(t *testing.T) {
		// days=4, divisor=4 -> k=1: só o último retorno de cada série
		got := Momentum(window, 4, 4)
		want := (3.9603960396039604 + 2) / 2
		if !almostEqual(got, want) {
			t.Errorf("Momentum = %v, want %v", got, want)
		}
	})

	t.Run("WideWindowMatchesAverage", func(t *testing.T) {
		// k maior que a quantidade de retornos cobre a janela inteira
		m := ComputeMetrics(1, "Teste", 90, window)
		got := Momentum(window, 90, 4)
		if !almostEqual(got, m.RetornoMedio) {
			t.Errorf("Momentum = %v, want retorno médio %v", got, m.RetornoMedio)
		}
	})

	t.Run("DivisorClampedToOne", func(t *testing.T) {
		if got, want := Momentum(window, 4, 0), Momentum(window, 4, 1); !almostEqual(got, want) {
			t.Errorf("Momentum com divisor 0 = %v, want %v", got, want)
		}
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		if got := Momentum(nil, 90, 4); got != 0 {
			t.Errorf("Momentum = %v, want 0", got)
		}
	})
}
