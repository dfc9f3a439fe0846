// Package bot implements the posting pipelines: scheduled market
// updates, weekend outlooks, and quarterly revenue reports.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/market"
	"github.com/marketbat/marketbat/internal/monitor"
	"github.com/marketbat/marketbat/internal/publish"
	"github.com/marketbat/marketbat/internal/realtime"
	"github.com/marketbat/marketbat/internal/retry"
)

// Posting slot names.
const (
	SlotMorning = "morning"
	SlotEvening = "evening"
	SlotRevenue = "revenue"
)

// Bot names used for monitoring documents and the post ledger.
const (
	BotMarket  = "market"
	BotRevenue = "revenue"
)

// MarketData is the financial-data dependency of the pipelines.
type MarketData interface {
	HasKey() bool
	DailyQuote(ctx context.Context, symbol string) (*market.Quote, error)
	LatestEarnings(ctx context.Context, symbol string) (*market.Earnings, error)
	QuarterlyRevenue(ctx context.Context, symbol string) (*market.Revenue, error)
}

// HeadlineSource provides one headline per tracked stock.
type HeadlineSource interface {
	HasKey() bool
	TopHeadline(ctx context.Context, symbol, companyName string) (string, error)
}

// Deps bundles the collaborators a Bot needs.
type Deps struct {
	Market    MarketData
	News      HeadlineSource
	Publisher publish.Publisher
	Posts     ledger.PostStore
	Events    *realtime.Broker
}

// Bot runs the posting pipelines for all slots.
type Bot struct {
	cfg        *config.Config
	market     MarketData
	news       HeadlineSource
	publisher  publish.Publisher
	posts      ledger.PostStore
	events     *realtime.Broker
	marketMon  *monitor.Monitor
	revenueMon *monitor.Monitor
	logger     zerolog.Logger

	pause time.Duration
	sleep func(time.Duration)
	now   func() time.Time
	rng   *rand.Rand
}

// New creates a Bot. Each pipeline gets its own monitoring document
// under the configured monitoring directory.
func New(logger zerolog.Logger, cfg *config.Config, deps Deps) *Bot {
	return &Bot{
		cfg:        cfg,
		market:     deps.Market,
		news:       deps.News,
		publisher:  deps.Publisher,
		posts:      deps.Posts,
		events:     deps.Events,
		marketMon:  monitor.New(logger, BotMarket, cfg.Monitoring.Dir, cfg.Monitoring.MaxEvents),
		revenueMon: monitor.New(logger, BotRevenue, cfg.Monitoring.Dir, cfg.Monitoring.MaxEvents),
		logger:     logger,
		pause:      config.ParseTimeout(cfg.Market.PauseBetween, time.Second),
		sleep:      time.Sleep,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RunSlot executes the pipeline for a posting slot. Failures are
// recorded in the ledger and the monitoring document rather than
// returned; the scheduler has no use for the error.
func (b *Bot) RunSlot(ctx context.Context, slot string) {
	b.logger.Info().Str("slot", slot).Msg("running posting slot")
	b.publishEvent(realtime.Event{Type: realtime.TypeSlotStarted, Slot: slot})

	var status string
	switch slot {
	case SlotMorning, SlotEvening:
		status = b.runMarketUpdate(ctx, slot)
	case SlotRevenue:
		status = b.runRevenueReport(ctx)
	default:
		b.logger.Error().Str("slot", slot).Msg("unknown posting slot")
		status = "error"
	}

	b.publishEvent(realtime.Event{Type: realtime.TypeSlotFinished, Slot: slot, Status: status})
}

// runMarketUpdate gathers quotes for the watchlist, picks the biggest
// movers, attaches headlines, and posts the update. On weekends it
// posts an outlook instead of price changes.
func (b *Bot) runMarketUpdate(ctx context.Context, slot string) string {
	mon := b.marketMon

	var message string
	var symbols int
	if weekday := b.now().Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		message = b.weekendOutlook(slot)
		symbols = len(b.cfg.Watchlist)
	} else {
		quotes := b.gatherQuotes(ctx)
		movers := topMovers(quotes, maxMovers)
		b.attachHeadlines(ctx, movers)
		message = b.formatMarketUpdate(slot, movers)
		symbols = len(quotes)
	}

	post := &ledger.Post{
		ID:      ledger.NewPostID(),
		Bot:     BotMarket,
		Slot:    slot,
		Message: message,
		Symbols: symbols,
	}

	if err := b.publishWithRetry(ctx, message); err != nil {
		b.logger.Error().Err(err).Str("slot", slot).Msg("market update failed")
		post.Status = "error"
		post.ErrorMsg = err.Error()
		b.recordPost(ctx, post)
		mon.RecordRun(slot, "error", fmt.Sprintf("market update failed: %v", err), map[string]any{
			"symbols": symbols,
		})
		return "error"
	}

	post.Status = "success"
	b.recordPost(ctx, post)
	mon.RecordRun(slot, "success", "", map[string]any{
		"symbols": symbols,
		"chars":   len([]rune(message)),
	})
	return "success"
}

// gatherQuotes fetches a quote per watchlist symbol, pausing between
// API calls. Symbols that fail or come back stale fall back to sample
// data so one bad symbol never sinks the whole post.
func (b *Bot) gatherQuotes(ctx context.Context) []market.Quote {
	quotes := make([]market.Quote, 0, len(b.cfg.Watchlist))
	for i, sym := range b.cfg.Watchlist {
		if i > 0 {
			b.sleep(b.pause)
		}

		if !b.market.HasKey() {
			quotes = append(quotes, b.sampleQuote(sym.Ticker))
			continue
		}

		quote, err := b.market.DailyQuote(ctx, sym.Ticker)
		if err != nil {
			b.logger.Warn().Err(err).Str("symbol", sym.Ticker).Msg("falling back to sample quote")
			quotes = append(quotes, b.sampleQuote(sym.Ticker))
			continue
		}
		quotes = append(quotes, *quote)
	}
	return quotes
}

// attachHeadlines fills in one headline per mover, preferring live
// news and falling back to canned headlines.
func (b *Bot) attachHeadlines(ctx context.Context, movers []Mover) {
	for i := range movers {
		if !b.news.HasKey() {
			movers[i].Headline = b.sampleHeadline(movers[i].Symbol)
			continue
		}
		headline, err := b.news.TopHeadline(ctx, movers[i].Symbol, b.companyName(movers[i].Symbol))
		if err != nil {
			b.logger.Warn().Err(err).Str("symbol", movers[i].Symbol).Msg("falling back to sample headline")
			headline = b.sampleHeadline(movers[i].Symbol)
		}
		movers[i].Headline = headline
	}
}

// publishWithRetry posts the message, retrying with exponential
// backoff per the configured policy.
func (b *Bot) publishWithRetry(ctx context.Context, message string) error {
	var lastErr error
	ok := retry.Do(b.logger, func() error {
		lastErr = b.publisher.Publish(ctx, message)
		return lastErr
	}, b.cfg.Retry.MaxAttempts, b.cfg.Retry.BackoffFactor)
	if ok {
		return nil
	}
	return lastErr
}

// recordPost writes the post to the ledger and announces it. Ledger
// faults are logged and swallowed so bookkeeping never fails a post
// that already went out.
func (b *Bot) recordPost(ctx context.Context, post *ledger.Post) {
	if err := b.posts.RecordPost(ctx, post); err != nil {
		b.logger.Error().Err(err).Str("post_id", post.ID).Msg("could not record post")
		return
	}
	b.publishEvent(realtime.Event{
		Type:   realtime.TypePostCreated,
		Bot:    post.Bot,
		Slot:   post.Slot,
		PostID: post.ID,
		Status: post.Status,
	})
}

func (b *Bot) publishEvent(evt realtime.Event) {
	if b.events != nil {
		b.events.Publish(evt)
	}
}

func (b *Bot) companyName(symbol string) string {
	for _, sym := range b.cfg.Watchlist {
		if sym.Ticker == symbol {
			return sym.Name
		}
	}
	return symbol
}
