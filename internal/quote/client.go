package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/pkg/metrics"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	DefaultTimeout = 30 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Bar é uma observação diária crua da fonte. Campos nulos chegam como nil
// e ficam a cargo da validação da carga.
type Bar struct {
	Date     time.Time
	Open     *float64
	High     *float64
	Low      *float64
	Close    *float64
	AdjClose *float64
	Volume   *int64
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetHistory busca as barras diárias de ticker no intervalo [from, to].
// Janela sem pregão retorna lista vazia, não erro.
func (c *Client) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordQuoteRequest("erro")
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordQuoteRequest("throttled")
		return nil, fmt.Errorf("%w: ticker %s", domain.ErrThrottled, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordQuoteRequest("erro")
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordQuoteRequest("erro")
		return nil, fmt.Errorf("%w: erro ao ler resposta: %v", domain.ErrSourceUnavailable, err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.RecordQuoteRequest("erro")
		return nil, fmt.Errorf("%w: resposta inválida: %v", domain.ErrSourceUnavailable, err)
	}

	if result.Chart.Error != nil {
		metrics.RecordQuoteRequest("erro")
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrSourceUnavailable,
			result.Chart.Error.Code, result.Chart.Error.Description)
	}

	metrics.RecordQuoteRequest("ok")

	if len(result.Chart.Result) == 0 {
		return nil, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := chartData.Indicators.Quote[0]

	var adjusted []*float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjusted = chartData.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]Bar, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		b := Bar{Date: time.Unix(ts, 0).UTC()}
		if i < len(q.Open) {
			b.Open = q.Open[i]
		}
		if i < len(q.High) {
			b.High = q.High[i]
		}
		if i < len(q.Low) {
			b.Low = q.Low[i]
		}
		if i < len(q.Close) {
			b.Close = q.Close[i]
		}
		if i < len(adjusted) {
			b.AdjClose = adjusted[i]
		}
		if i < len(q.Volume) {
			b.Volume = q.Volume[i]
		}
		bars = append(bars, b)
	}

	return bars, nil
}
