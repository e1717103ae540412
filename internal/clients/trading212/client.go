// Package trading212 provides a client for the Trading212 API
package trading212

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkelsall/piefolio/internal/clients/httpx"
	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/models"
)

const (
	DefaultBaseURL   = "https://live.trading212.com/api/v0"
	DefaultRateLimit = 2 // requests per second
)

// flexTime handles timestamps that may arrive as epoch seconds or RFC3339.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var epoch float64
	if err := json.Unmarshal(data, &epoch); err == nil {
		*t = flexTime(time.Unix(int64(epoch), 0).UTC())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*t = flexTime(time.Time{})
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				*t = flexTime(parsed)
				return nil
			}
		}
		*t = flexTime(time.Time{})
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into time", string(data))
}

// Client implements the BrokerClient interface
type Client struct {
	baseURL string
	apiKey  string
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

// NewClient creates a new Trading212 client bound to one user's API key
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    httpx.NewClient(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET request and decodes the response.
// Responses are cached per API key so concurrent users never share data.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Trading212 API request")

	body, err := c.http.Get(ctx, c.baseURL+path, header, c.apiKey)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetPies retrieves the list of pies
func (c *Client) GetPies(ctx context.Context) ([]models.PieRef, error) {
	var resp []struct {
		ID int64 `json:"id"`
	}
	if err := c.get(ctx, "/equity/pies", &resp); err != nil {
		return nil, err
	}

	pies := make([]models.PieRef, len(resp))
	for i, p := range resp {
		pies[i] = models.PieRef{ID: p.ID}
	}

	return pies, nil
}

type pieDetailResponse struct {
	Settings struct {
		ID                 int64    `json:"id"`
		Name               string   `json:"name"`
		CreationDate       flexTime `json:"creationDate"`
		DividendCashAction string   `json:"dividendCashAction"`
	} `json:"settings"`
	Instruments []struct {
		Ticker        string  `json:"ticker"`
		CurrentShare  float64 `json:"currentShare"`
		ExpectedShare float64 `json:"expectedShare"`
		Issues        []any   `json:"issues"`
		OwnedQuantity float64 `json:"ownedQuantity"`
		Result        struct {
			PriceAvgInvestedValue float64 `json:"priceAvgInvestedValue"`
			PriceAvgValue         float64 `json:"priceAvgValue"`
		} `json:"result"`
	} `json:"instruments"`
}

// GetPie retrieves one pie's detail document
func (c *Client) GetPie(ctx context.Context, id int64) (*models.BrokerPieDetail, error) {
	var resp pieDetailResponse
	path := fmt.Sprintf("/equity/pies/%d", id)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	detail := &models.BrokerPieDetail{
		ID:                 id,
		Name:               resp.Settings.Name,
		CreationDate:       time.Time(resp.Settings.CreationDate),
		DividendCashAction: resp.Settings.DividendCashAction,
		Holdings:           make([]models.BrokerHolding, len(resp.Instruments)),
	}

	for i, inst := range resp.Instruments {
		detail.Holdings[i] = models.BrokerHolding{
			Ticker:                inst.Ticker,
			OwnedQuantity:         inst.OwnedQuantity,
			CurrentShare:          inst.CurrentShare,
			ExpectedShare:         inst.ExpectedShare,
			PriceAvgInvestedValue: inst.Result.PriceAvgInvestedValue,
			PriceAvgValue:         inst.Result.PriceAvgValue,
			Issues:                inst.Issues,
		}
	}

	return detail, nil
}

// GetInstruments retrieves the full instrument reference catalogue
func (c *Client) GetInstruments(ctx context.Context) ([]models.InstrumentMetadata, error) {
	var resp []struct {
		Ticker           string   `json:"ticker"`
		Name             string   `json:"name"`
		CurrencyCode     string   `json:"currencyCode"`
		Type             string   `json:"type"`
		AddedOn          flexTime `json:"addedOn"`
		MaxOpenQuantity  float64  `json:"maxOpenQuantity"`
		MinTradeQuantity float64  `json:"minTradeQuantity"`
	}
	if err := c.get(ctx, "/equity/metadata/instruments", &resp); err != nil {
		return nil, err
	}

	instruments := make([]models.InstrumentMetadata, len(resp))
	for i, inst := range resp {
		instruments[i] = models.InstrumentMetadata{
			Ticker:           inst.Ticker,
			Name:             inst.Name,
			CurrencyCode:     inst.CurrencyCode,
			Type:             inst.Type,
			AddedOn:          time.Time(inst.AddedOn),
			MaxOpenQuantity:  inst.MaxOpenQuantity,
			MinTradeQuantity: inst.MinTradeQuantity,
		}
	}

	return instruments, nil
}

// cashFields covers the numeric fields the cash endpoint may expose.
type cashFields struct {
	Free *float64 `json:"free"`
	Cash *float64 `json:"cash"`
}

func (f cashFields) value() (float64, bool) {
	if f.Free != nil {
		return *f.Free, true
	}
	if f.Cash != nil {
		return *f.Cash, true
	}
	return 0, false
}

// GetCash retrieves the free cash balance. The endpoint returns either an
// object or a single-element array exposing a free/cash field.
func (c *Client) GetCash(ctx context.Context) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Accept", "application/json")

	body, err := c.http.Get(ctx, c.baseURL+"/equity/account/cash", header, c.apiKey)
	if err != nil {
		return 0, err
	}

	var obj cashFields
	if err := json.Unmarshal(body, &obj); err == nil {
		if v, ok := obj.value(); ok {
			return v, nil
		}
	}

	var list []cashFields
	if err := json.Unmarshal(body, &list); err == nil {
		for _, f := range list {
			if v, ok := f.value(); ok {
				return v, nil
			}
		}
	}

	return 0, fmt.Errorf("cash endpoint returned no free/cash field")
}

// Ensure Client implements BrokerClient
var _ interfaces.BrokerClient = (*Client)(nil)
