package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/market"
	"github.com/marketbat/marketbat/internal/publish"
)

// runRevenueReport checks the watchlist for freshly reported quarters
// and posts one revenue summary per new report. Quarters already in
// the ledger are skipped so reruns never repeat a post.
func (b *Bot) runRevenueReport(ctx context.Context) string {
	mon := b.revenueMon

	if !b.market.HasKey() {
		b.logger.Warn().Msg("no market API key, skipping revenue reports")
		mon.RecordRun(SlotRevenue, "warning", "no market API key configured", nil)
		return "warning"
	}

	today := b.now()
	var posted, failed int
	for i, sym := range b.cfg.Watchlist {
		if i > 0 {
			b.sleep(b.pause)
		}

		earnings, err := b.market.LatestEarnings(ctx, sym.Ticker)
		if err != nil {
			b.logger.Warn().Err(err).Str("symbol", sym.Ticker).Msg("could not fetch earnings")
			continue
		}
		reported, err := time.Parse("2006-01-02", earnings.ReportedDate)
		if err != nil {
			continue
		}
		if !withinOneDay(today, reported) {
			continue
		}

		already, err := b.posts.HasRevenuePost(ctx, sym.Ticker, earnings.FiscalDateEnding)
		if err != nil {
			b.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("could not check revenue ledger")
		}
		if already {
			b.logger.Info().Str("symbol", sym.Ticker).Str("quarter", earnings.FiscalDateEnding).
				Msg("revenue report already posted")
			continue
		}

		revenue, err := b.market.QuarterlyRevenue(ctx, sym.Ticker)
		if err != nil {
			b.logger.Warn().Err(err).Str("symbol", sym.Ticker).Msg("could not fetch revenue")
			continue
		}

		message := b.formatRevenueReport(sym.Name, revenue)
		post := &ledger.Post{
			ID:      ledger.NewPostID(),
			Bot:     BotRevenue,
			Slot:    SlotRevenue,
			Message: message,
			Symbols: 1,
			Symbol:  sym.Ticker,
			Quarter: revenue.FiscalDateEnding,
		}

		if err := b.publishWithRetry(ctx, message); err != nil {
			b.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("revenue report failed")
			failed++
			post.Status = "error"
			post.ErrorMsg = err.Error()
			b.recordPost(ctx, post)
			mon.RecordEvent("error", fmt.Sprintf("revenue report for %s failed: %v", sym.Ticker, err), map[string]any{
				"symbol":  sym.Ticker,
				"quarter": revenue.FiscalDateEnding,
			})
			continue
		}

		posted++
		post.Status = "success"
		b.recordPost(ctx, post)
		mon.RecordEvent("success", fmt.Sprintf("posted revenue report for %s", sym.Ticker), map[string]any{
			"symbol":  sym.Ticker,
			"quarter": revenue.FiscalDateEnding,
		})
	}

	meta := map[string]any{"posted": posted, "failed": failed}
	if failed > 0 {
		mon.RecordRun(SlotRevenue, "error", fmt.Sprintf("%d of %d revenue reports failed", failed, posted+failed), meta)
		return "error"
	}
	mon.RecordRun(SlotRevenue, "success", fmt.Sprintf("posted %d revenue reports", posted), meta)
	return "success"
}

// withinOneDay reports whether two dates are at most one calendar day
// apart, matching the window in which a report counts as fresh.
func withinOneDay(a, b time.Time) bool {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := ad.Sub(bd)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 24*time.Hour
}

// formatRevenueReport renders one quarterly revenue summary.
func (b *Bot) formatRevenueReport(name string, revenue *market.Revenue) string {
	var changePct float64
	if revenue.Previous != 0 {
		changePct = (revenue.Current - revenue.Previous) / revenue.Previous * 100
	}
	emoji := "📈"
	if changePct < 0 {
		emoji = "📉"
	}

	message := fmt.Sprintf("%s Revenue Report\n\nQuarter ending %s: $%.2fB %s\nChange vs prev quarter: %+.2f%%",
		name, revenue.FiscalDateEnding, revenue.Current/1e9, emoji, changePct)
	message += "\n⏰ " + b.now().Format("2006-01-02")
	return publish.Truncate(message)
}
