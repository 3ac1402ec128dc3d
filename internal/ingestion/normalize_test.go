package ingestion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jeovahfialho/invest-analyzer/internal/quote"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func validQuoteBar(date time.Time) quote.Bar {
	return quote.Bar{
		Date:     date,
		Open:     fptr(100),
		High:     fptr(105),
		Low:      fptr(99),
		Close:    fptr(104),
		AdjClose: fptr(103.5),
		Volume:   iptr(1200),
	}
}

func TestValidateBar(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*quote.Bar)
		want   string
	}{
		{"Valid", func(b *quote.Bar) {}, ""},
		{"AllNull", func(b *quote.Bar) {
			b.Open, b.High, b.Low, b.Close = nil, nil, nil, nil
		}, "ohlc_nulo"},
		{"PartialNull", func(b *quote.Bar) {
			b.High = nil
		}, "ohlc_incompleto"},
		{"NegativePrice", func(b *quote.Bar) {
			b.Low = fptr(-1)
		}, "valor_negativo"},
		{"HighBelowLow", func(b *quote.Bar) {
			b.High = fptr(98)
		}, "alta_menor_que_baixa"},
		{"OpenAboveHigh", func(b *quote.Bar) {
			b.Open = fptr(110)
		}, "abertura_ou_fechamento_fora_do_intervalo"},
		{"CloseBelowLow", func(b *quote.Bar) {
			b.Close = fptr(90)
		}, "abertura_ou_fechamento_fora_do_intervalo"},
	}

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := validQuoteBar(date)
			tt.mutate(&bar)

			if got := validateBar(bar); got != tt.want {
				t.Errorf("validateBar() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeBars(t *testing.T) {
	// Horário do pregão na fonte; a linha persiste truncada à meia-noite UTC
	day1 := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	bad := validQuoteBar(day2)
	bad.Close = nil

	noOptionals := validQuoteBar(day2)
	noOptionals.AdjClose = nil
	noOptionals.Volume = nil

	rows, rejected := normalizeBars(7, "^GSPC", []quote.Bar{validQuoteBar(day1), bad, noOptionals})

	if rejected != 1 {
		t.Fatalf("rejected = %d, want 1", rejected)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.IDIndice != 7 {
		t.Errorf("IDIndice = %d, want 7", first.IDIndice)
	}
	wantDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !first.DataQuotacao.Equal(wantDate) {
		t.Errorf("DataQuotacao = %v, want %v", first.DataQuotacao, wantDate)
	}
	if !first.FechamentoAjustado.Equal(decimal.NewFromFloat(103.5)) {
		t.Errorf("FechamentoAjustado = %s, want 103.5", first.FechamentoAjustado)
	}

	second := rows[1]
	if second.Volume != 0 {
		t.Errorf("Volume = %d, want 0", second.Volume)
	}
	if !second.FechamentoAjustado.Equal(second.Fechamento) {
		t.Errorf("FechamentoAjustado = %s, want fechamento %s", second.FechamentoAjustado, second.Fechamento)
	}
}

func TestNormalizeBarsAllRejected(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	holiday := quote.Bar{Date: date, Volume: iptr(0)}

	rows, rejected := normalizeBars(1, "^BVSP", []quote.Bar{holiday})

	if rejected != 1 || len(rows) != 0 {
		t.Errorf("rows = %d, rejected = %d, want 0 e 1", len(rows), rejected)
	}
}

func BenchmarkNormalizeBars(b *testing.B) {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

	benchmarks := []struct {
		name string
		days int
	}{
		{"OneYear", 252},
		{"TwoYears", 504},
		{"TenYears", 2520},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			bars := barsForDays(start, bm.days)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				normalizeBars(1, "^GSPC", bars)
			}
		})
	}
}
