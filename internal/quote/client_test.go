package quote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
)

// Resposta real do endpoint v8/finance/chart, reduzida a dois pregões.
// O segundo traz OHLC nulo, como a fonte emite em feriados.
const chartBody = `{
	"chart": {
		"result": [{
			"timestamp": [1710460800, 1710547200],
			"indicators": {
				"quote": [{
					"open": [100.0, null],
					"high": [105.0, null],
					"low": [99.0, null],
					"close": [104.0, null],
					"volume": [1200, null]
				}],
				"adjclose": [{"adjclose": [103.5, null]}]
			}
		}],
		"error": null
	}
}`

func TestGetHistory(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartBody))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	bars, err := client.GetHistory(context.Background(), "^GSPC", from, to)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}

	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("path = %q", gotPath)
	}
	for _, param := range []string{"interval=1d", "period1=1710460800", "period2=1710547200"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q sem %q", gotQuery, param)
		}
	}

	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}

	first := bars[0]
	if !first.Date.Equal(from) {
		t.Errorf("Date = %v, want %v", first.Date, from)
	}
	if first.Open == nil || *first.Open != 100 {
		t.Errorf("Open = %v, want 100", first.Open)
	}
	if first.Close == nil || *first.Close != 104 {
		t.Errorf("Close = %v, want 104", first.Close)
	}
	if first.AdjClose == nil || *first.AdjClose != 103.5 {
		t.Errorf("AdjClose = %v, want 103.5", first.AdjClose)
	}
	if first.Volume == nil || *first.Volume != 1200 {
		t.Errorf("Volume = %v, want 1200", first.Volume)
	}

	// Nulos ficam nil: decidir o destino da barra é papel da carga
	second := bars[1]
	if second.Open != nil || second.High != nil || second.Low != nil || second.Close != nil {
		t.Errorf("OHLC do feriado deveria ser nil: %+v", second)
	}
}

func TestGetHistoryThrottled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetHistory(context.Background(), "^GSPC", time.Now().AddDate(0, 0, -1), time.Now())
	if !errors.Is(err, domain.ErrThrottled) {
		t.Errorf("err = %v, want ErrThrottled", err)
	}
}

func TestGetHistoryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetHistory(context.Background(), "^GSPC", time.Now().AddDate(0, 0, -1), time.Now())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestGetHistoryChartError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetHistory(context.Background(), "FAKE11", time.Now().AddDate(0, 0, -1), time.Now())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("err = %v, deveria citar o código da fonte", err)
	}
}

func TestGetHistoryEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	bars, err := client.GetHistory(context.Background(), "^GSPC", time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("len(bars) = %d, want 0", len(bars))
	}
}

func TestGetHistoryInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bloqueado</html>`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetHistory(context.Background(), "^GSPC", time.Now().AddDate(0, 0, -1), time.Now())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

// Erro de transporte preserva as duas cadeias: o sentinela da fonte e a
// causa original do contexto.
func TestGetHistoryContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetHistory(ctx, "^GSPC", time.Now().AddDate(0, 0, -1), time.Now())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled na cadeia", err)
	}
}
