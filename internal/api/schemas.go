package api

import (
	"time"

	"github.com/jeovahfialho/invest-analyzer/internal/ingestion"
)

type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

type ServiceHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SystemStatsResponse struct {
	Database DatabaseStats `json:"database"`
	Cache    CacheStats    `json:"cache"`
	API      APIStats      `json:"api"`
}

type DatabaseStats struct {
	ActiveConnections int32  `json:"active_connections"`
	IdleConnections   int32  `json:"idle_connections"`
	TotalConnections  int32  `json:"total_connections"`
	WaitCount         int64  `json:"wait_count"`
	WaitDuration      string `json:"wait_duration"`
}

type CacheStats struct {
	MemoryUsed string `json:"memory_used"`
}

type APIStats struct {
	ActiveGoroutines int `json:"active_goroutines"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadRequest dispara uma carga de cotações. Tickers vazio carrega o
// catálogo inteiro; datas em 2006-01-02, ausentes assumem a janela padrão.
type LoadRequest struct {
	Tickers []string `json:"tickers"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Async   bool     `json:"async"`
}

type LoadResponse struct {
	JobID   string                `json:"job_id,omitempty"`
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Report  *ingestion.LoadReport `json:"report,omitempty"`
}
