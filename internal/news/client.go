// Package news fetches one headline per tracked stock from NewsAPI.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxHeadlineLen = 100

// relevantKeywords mark a headline as finance-related; the first
// matching article wins over merely-recent ones.
var relevantKeywords = []string{"stock", "earnings", "revenue", "growth", "sales", "profit"}

// Client is a NewsAPI client.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client. An empty apiKey is allowed; callers
// check HasKey and fall back to sample headlines.
func NewClient(logger zerolog.Logger, baseURL, apiKey string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// TopHeadline returns the most relevant recent headline for a stock.
// Finance-keyword headlines are preferred; otherwise the newest
// article is used. Headlines are capped at 100 characters.
func (c *Client) TopHeadline(ctx context.Context, symbol, companyName string) (string, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q OR %q", companyName, symbol))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprint(c.pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from news API", resp.StatusCode)
	}

	var payload struct {
		Status   string `json:"status"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode news for %s: %w", symbol, err)
	}
	if payload.Status != "ok" || len(payload.Articles) == 0 {
		return "", fmt.Errorf("no news found for %s", symbol)
	}

	for _, article := range payload.Articles {
		lower := strings.ToLower(article.Title)
		for _, kw := range relevantKeywords {
			if strings.Contains(lower, kw) {
				return capHeadline(article.Title), nil
			}
		}
	}
	return capHeadline(payload.Articles[0].Title), nil
}

func capHeadline(title string) string {
	runes := []rune(title)
	if len(runes) <= maxHeadlineLen {
		return title
	}
	return string(runes[:maxHeadlineLen]) + "..."
}

// SampleHeadline returns a canned headline for when the news API is
// unavailable or returns nothing useful.
func SampleHeadline(symbol string) string {
	samples := map[string]string{
		"AAPL":  "Apple reports strong iPhone sales growth",
		"MSFT":  "Microsoft Azure cloud revenue surges",
		"GOOGL": "Google search advertising shows recovery",
		"TSLA":  "Tesla Model Y sales exceed expectations",
		"NVDA":  "NVIDIA AI chip demand continues strong",
	}
	if headline, ok := samples[symbol]; ok {
		return headline
	}
	return fmt.Sprintf("%s shows positive momentum", symbol)
}
