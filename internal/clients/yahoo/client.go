// Package yahoo provides a client for the Yahoo Finance API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkelsall/piefolio/internal/clients/httpx"
	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/models"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultRateLimit = 5 // requests per second

	userAgent = "piefolio/1.0"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL string
	http    *httpx.Client
	logger  *common.Logger
	limiter *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithHTTPClient sets the underlying resilient HTTP client
func WithHTTPClient(h *httpx.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    httpx.NewClient(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET request and decodes the response. Each
// endpoint passes the cache TTL matching how fast its data goes stale.
func (c *Client) get(ctx context.Context, path string, params url.Values, ttl time.Duration, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Yahoo API request")

	body, err := c.http.GetWithTTL(ctx, reqURL, header, "", ttl)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                      string   `json:"symbol"`
			RegularMarketPrice          float64  `json:"regularMarketPrice"`
			RegularMarketTime           int64    `json:"regularMarketTime"`
			DividendYield               *float64 `json:"dividendYield"`               // percent
			TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"` // fraction
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

// GetQuote retrieves the current quote and dividend yield for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, common.FreshnessQuote, &resp); err != nil {
		return nil, err
	}

	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote result for %s", symbol)
	}

	r := resp.QuoteResponse.Result[0]

	// Yahoo reports dividendYield in percent and the trailing yield as a
	// fraction; prefer the former, derive from the latter when absent.
	yield := 0.0
	if r.DividendYield != nil {
		yield = *r.DividendYield
	} else if r.TrailingAnnualDividendYield != nil {
		yield = *r.TrailingAnnualDividendYield * 100
	}

	asOf := time.Unix(r.RegularMarketTime, 0)
	if r.RegularMarketTime == 0 {
		asOf = time.Now()
	}

	return &models.Quote{
		Symbol:        r.Symbol,
		Price:         r.RegularMarketPrice,
		DividendYield: yield,
		AsOf:          asOf,
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// GetDailyHistory retrieves daily closes in ascending date order.
// Null closes (holidays, halted sessions) are skipped.
func (c *Client) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyClose, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))
	params.Set("interval", "1d")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, common.FreshnessHistory, &resp); err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote series for %s", symbol)
	}

	closes := r.Indicators.Quote[0].Close
	history := make([]models.DailyClose, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		history = append(history, models.DailyClose{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return history, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
