// Package market fetches stock price data from the Alpha Vantage API.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ErrStaleData is returned when the latest trading day in the API
// response is older than the configured freshness threshold.
var ErrStaleData = errors.New("market data is stale")

// Quote holds the latest close and its delta versus the prior session.
type Quote struct {
	Symbol    string
	Price     float64
	Change    float64
	ChangePct float64
	Date      string // trading day, YYYY-MM-DD
}

// Earnings is the most recent quarterly earnings entry for a symbol.
type Earnings struct {
	Symbol           string
	FiscalDateEnding string
	ReportedDate     string
	ReportedEPS      string
}

// Revenue holds the two most recent quarterly revenues for a symbol.
type Revenue struct {
	Symbol           string
	Current          float64
	Previous         float64
	FiscalDateEnding string
}

// Client is an Alpha Vantage API client.
type Client struct {
	baseURL        string
	apiKey         string
	maxDataAgeDays int
	httpClient     *http.Client
	logger         zerolog.Logger
	now            func() time.Time
}

// NewClient creates a Client. An empty apiKey is allowed; callers
// check HasKey and fall back to sample data.
func NewClient(logger zerolog.Logger, baseURL, apiKey string, maxDataAgeDays int, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		maxDataAgeDays: maxDataAgeDays,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		now:            time.Now,
	}
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.baseURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// DailyQuote fetches the latest daily close for symbol and computes
// the change versus the previous session. Data older than the
// freshness threshold yields ErrStaleData.
func (c *Client) DailyQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")

	var payload struct {
		TimeSeries map[string]struct {
			Close string `json:"4. close"`
		} `json:"Time Series (Daily)"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch daily series for %s: %w", symbol, err)
	}
	if len(payload.TimeSeries) < 2 {
		return nil, fmt.Errorf("no data available for %s", symbol)
	}

	dates := make([]string, 0, len(payload.TimeSeries))
	for d := range payload.TimeSeries {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	latest, previous := dates[0], dates[1]
	if !c.isRecent(latest) {
		c.logger.Warn().Str("symbol", symbol).Str("date", latest).Msg("stale market data")
		return nil, fmt.Errorf("%w: %s latest day %s", ErrStaleData, symbol, latest)
	}

	latestClose, err := strconv.ParseFloat(payload.TimeSeries[latest].Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parse close for %s on %s: %w", symbol, latest, err)
	}
	previousClose, err := strconv.ParseFloat(payload.TimeSeries[previous].Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parse close for %s on %s: %w", symbol, previous, err)
	}
	if previousClose == 0 {
		return nil, fmt.Errorf("zero previous close for %s", symbol)
	}

	change := latestClose - previousClose
	return &Quote{
		Symbol:    symbol,
		Price:     latestClose,
		Change:    change,
		ChangePct: change / previousClose * 100,
		Date:      latest,
	}, nil
}

// isRecent reports whether the trading day is within the freshness
// threshold of today (UTC).
func (c *Client) isRecent(date string) bool {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		c.logger.Error().Err(err).Str("date", date).Msg("could not parse data date")
		return false
	}
	today := c.now().UTC().Truncate(24 * time.Hour)
	age := today.Sub(day.UTC().Truncate(24 * time.Hour))
	return age <= time.Duration(c.maxDataAgeDays)*24*time.Hour
}

// LatestEarnings fetches the most recent quarterly earnings entry.
func (c *Client) LatestEarnings(ctx context.Context, symbol string) (*Earnings, error) {
	params := url.Values{}
	params.Set("function", "EARNINGS")
	params.Set("symbol", symbol)

	var payload struct {
		QuarterlyEarnings []struct {
			FiscalDateEnding string `json:"fiscalDateEnding"`
			ReportedDate     string `json:"reportedDate"`
			ReportedEPS      string `json:"reportedEPS"`
		} `json:"quarterlyEarnings"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch earnings for %s: %w", symbol, err)
	}
	if len(payload.QuarterlyEarnings) == 0 {
		return nil, fmt.Errorf("no earnings available for %s", symbol)
	}

	latest := payload.QuarterlyEarnings[0]
	return &Earnings{
		Symbol:           symbol,
		FiscalDateEnding: latest.FiscalDateEnding,
		ReportedDate:     latest.ReportedDate,
		ReportedEPS:      latest.ReportedEPS,
	}, nil
}

// QuarterlyRevenue fetches the two most recent quarterly revenues.
func (c *Client) QuarterlyRevenue(ctx context.Context, symbol string) (*Revenue, error) {
	params := url.Values{}
	params.Set("function", "INCOME_STATEMENT")
	params.Set("symbol", symbol)

	var payload struct {
		QuarterlyReports []struct {
			FiscalDateEnding string `json:"fiscalDateEnding"`
			TotalRevenue     string `json:"totalRevenue"`
		} `json:"quarterlyReports"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch income statement for %s: %w", symbol, err)
	}
	if len(payload.QuarterlyReports) < 2 {
		return nil, fmt.Errorf("not enough quarterly reports for %s", symbol)
	}

	current, err := strconv.ParseFloat(payload.QuarterlyReports[0].TotalRevenue, 64)
	if err != nil {
		return nil, fmt.Errorf("parse revenue for %s: %w", symbol, err)
	}
	previous, err := strconv.ParseFloat(payload.QuarterlyReports[1].TotalRevenue, 64)
	if err != nil {
		return nil, fmt.Errorf("parse previous revenue for %s: %w", symbol, err)
	}

	return &Revenue{
		Symbol:           symbol,
		Current:          current,
		Previous:         previous,
		FiscalDateEnding: payload.QuarterlyReports[0].FiscalDateEnding,
	}, nil
}
