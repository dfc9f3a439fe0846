package bot

import (
	"github.com/marketbat/marketbat/internal/market"
	"github.com/marketbat/marketbat/internal/news"
)

// sampleQuotes stand in when the market API is unavailable, keyed by
// symbol with a price and percentage change.
var sampleQuotes = map[string]struct {
	price     float64
	changePct float64
}{
	"AAPL":  {150.25, 2.5},
	"MSFT":  {300.50, 1.8},
	"GOOGL": {120.75, -1.2},
	"TSLA":  {250.00, 3.5},
	"NVDA":  {450.25, 5.2},
}

func (b *Bot) sampleQuote(symbol string) market.Quote {
	sample, ok := sampleQuotes[symbol]
	if !ok {
		sample.price = 100
		sample.changePct = 0.5
	}
	previous := sample.price / (1 + sample.changePct/100)
	return market.Quote{
		Symbol:    symbol,
		Price:     sample.price,
		Change:    sample.price - previous,
		ChangePct: sample.changePct,
		Date:      b.now().Format("2006-01-02"),
	}
}

func (b *Bot) sampleHeadline(symbol string) string {
	return news.SampleHeadline(symbol)
}
