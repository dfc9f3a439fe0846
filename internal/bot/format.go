package bot

import (
	"fmt"
	"strings"

	"github.com/marketbat/marketbat/internal/publish"
)

// headlineSnippetLen bounds the headline excerpt inside a mover line.
const headlineSnippetLen = 40

func timeOfDay(slot string) string {
	if slot == SlotMorning {
		return "Morning"
	}
	return "Evening"
}

// formatMarketUpdate renders the update post from a randomized
// template, always ending within the platform length limit.
func (b *Bot) formatMarketUpdate(slot string, movers []Mover) string {
	tod := timeOfDay(slot)
	nowStr := b.now().Format("2006-01-02 15:04")

	if len(movers) == 0 {
		return fmt.Sprintf("📊 %s Market Update\n\nUnable to fetch market data at this time.\n\n⏰ %s", tod, nowStr)
	}

	lines := make([]string, 0, len(movers))
	names := make([]string, 0, len(movers))
	var gains, losses int
	for i, m := range movers {
		emoji := "📈"
		if m.ChangePct < 0 {
			emoji = "📉"
		}
		name := b.companyName(m.Symbol)
		names = append(names, name)
		lines = append(lines, fmt.Sprintf("%d. %s: %+.2f%% %s\n   %s",
			i+1, name, m.ChangePct, emoji, snippet(m.Headline)))

		if m.ChangePct > 0 {
			gains++
		} else if m.ChangePct < 0 {
			losses++
		}
	}
	moversStr := strings.Join(lines, "\n")

	var summary string
	switch {
	case gains > 0 && losses > 0:
		summary = fmt.Sprintf("📈 Gainers: %d | 📉 Losers: %d", gains, losses)
	case gains > 0:
		summary = "📈 Market showing positive momentum"
	case losses > 0:
		summary = "📉 Market showing downward pressure"
	}

	templates := []string{
		fmt.Sprintf("📊 %s Market Update\n\n🔥 Top Movers Today:\n%s\n\n%s\n⏰ %s", tod, moversStr, summary, nowStr),
		fmt.Sprintf("%s Recap: Who moved the market?\n%s\n%s\n⏰ %s", tod, moversStr, summary, nowStr),
		fmt.Sprintf("%s movers: %s\n\n%s\n%s\n⏰ %s", tod, strings.Join(names, ", "), moversStr, summary, nowStr),
		fmt.Sprintf("%s Stock Highlights:\n%s\n%s\n⏰ %s", tod, moversStr, summary, nowStr),
		fmt.Sprintf("%s - %s\nBiggest swings:\n%s\n%s", tod, nowStr, moversStr, summary),
		fmt.Sprintf("%s Market Movers:\n%s\n%s\n⏰ %s", tod, moversStr, summary, nowStr),
	}
	return publish.Truncate(templates[b.rng.Intn(len(templates))])
}

func snippet(headline string) string {
	runes := []rune(headline)
	if len(runes) <= headlineSnippetLen {
		return headline
	}
	return string(runes[:headlineSnippetLen]) + "..."
}
