package ingestion

import (
	"time"

	"github.com/google/uuid"
)

// DateRange delimita as datas efetivamente gravadas numa carga,
// no formato 2006-01-02.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TickerResult é o desfecho individual de um índice dentro da carga.
// Error preenchido significa que nenhuma linha daquele índice foi gravada.
type TickerResult struct {
	Ticker       string `json:"ticker"`
	RowsLoaded   int64  `json:"rows_loaded"`
	RowsRejected int64  `json:"rows_rejected,omitempty"`
	Error        string `json:"error,omitempty"`
}

// TickerFailure repete os índices com falha para leitura rápida do relatório.
type TickerFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// LoadReport resume uma execução completa de carga. Falha de um índice não
// derruba a execução: entra em Failures e a carga segue para o próximo.
type LoadReport struct {
	RunID             uuid.UUID       `json:"run_id"`
	StartedAt         time.Time       `json:"started_at"`
	FinishedAt        time.Time       `json:"finished_at"`
	IndicesAttempted  int             `json:"indices_attempted"`
	IndicesSucceeded  int             `json:"indices_succeeded"`
	TotalRowsUpserted int64           `json:"total_rows_upserted"`
	TotalRowsRejected int64           `json:"total_rows_rejected"`
	DateRangeCovered  *DateRange      `json:"date_range_covered"`
	Results           []TickerResult  `json:"results"`
	Failures          []TickerFailure `json:"failures"`
}

func newReport() *LoadReport {
	return &LoadReport{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Results:   []TickerResult{},
		Failures:  []TickerFailure{},
	}
}

func (r *LoadReport) recordSuccess(ticker string, loaded, rejected int64) {
	r.IndicesSucceeded++
	r.TotalRowsUpserted += loaded
	r.TotalRowsRejected += rejected
	r.Results = append(r.Results, TickerResult{
		Ticker:       ticker,
		RowsLoaded:   loaded,
		RowsRejected: rejected,
	})
}

func (r *LoadReport) recordFailure(ticker, reason string) {
	r.Results = append(r.Results, TickerResult{Ticker: ticker, Error: reason})
	r.Failures = append(r.Failures, TickerFailure{Ticker: ticker, Reason: reason})
}

// coverRange expande o intervalo coberto com as datas de um lote gravado.
// Datas em 2006-01-02 comparam corretamente como string.
func (r *LoadReport) coverRange(first, last time.Time) {
	from := first.Format("2006-01-02")
	to := last.Format("2006-01-02")

	if r.DateRangeCovered == nil {
		r.DateRangeCovered = &DateRange{From: from, To: to}
		return
	}
	if from < r.DateRangeCovered.From {
		r.DateRangeCovered.From = from
	}
	if to > r.DateRangeCovered.To {
		r.DateRangeCovered.To = to
	}
}

func (r *LoadReport) finish() {
	r.FinishedAt = time.Now().UTC()
}
