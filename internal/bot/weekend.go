package bot

import (
	"fmt"
	"strings"

	"github.com/marketbat/marketbat/internal/publish"
)

// weekendDisclaimer always survives truncation.
const weekendDisclaimer = "\n\n⚠️ Not financial advice. Do your own research."

var sentiments = []string{"bullish", "neutral", "cautious"}

// weekendPredictions holds canned talking points per tracked symbol
// for the weekend posts, when there is no fresh trading data.
var weekendPredictions = map[string][]string{
	"AAPL": {
		"iPhone 16 pre-orders could drive momentum",
		"MacBook sales expected to remain strong",
		"Services revenue growth likely to continue",
	},
	"MSFT": {
		"Azure cloud growth expected to accelerate",
		"AI integration could boost Office subscriptions",
		"Gaming division may see strong quarter",
	},
	"GOOGL": {
		"Search ad revenue likely to show recovery",
		"Android 15 adoption could boost ecosystem",
		"Gemini AI features may drive engagement",
	},
	"TSLA": {
		"Model Y demand expected to remain strong",
		"Battery technology advances could boost margins",
		"European expansion plans may accelerate",
	},
	"NVDA": {
		"AI chip demand likely to continue surging",
		"Gaming GPU sales expected to exceed estimates",
		"Data center revenue could hit new records",
	},
}

// weekendOutlook renders the compact weekend prediction post for a
// slot: two stocks to watch plus an overall sentiment line.
func (b *Bot) weekendOutlook(slot string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s Market Predictions (Weekend)\n\n", timeOfDay(slot))
	sb.WriteString("🔮 Key Stocks to Watch:\n")

	var bullish, cautious int
	shown := 0
	for _, sym := range b.cfg.Watchlist {
		sentiment := sentiments[b.rng.Intn(len(sentiments))]
		switch sentiment {
		case "bullish":
			bullish++
		case "cautious":
			cautious++
		}

		if shown >= 2 {
			continue
		}
		shown++

		emoji := "📊"
		switch sentiment {
		case "bullish":
			emoji = "📈"
		case "cautious":
			emoji = "⚠️"
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", shown, b.companyName(sym.Ticker), emoji)
		fmt.Fprintf(&sb, "   %s\n", b.prediction(sym.Ticker))
	}

	switch {
	case bullish > 0 && cautious == 0:
		sb.WriteString("\n📈 Positive sentiment")
	case cautious > 0 && bullish == 0:
		sb.WriteString("\n⚠️ Cautious sentiment")
	default:
		sb.WriteString("\n📊 Mixed sentiment")
	}

	fmt.Fprintf(&sb, "\n\n⏰ %s", b.now().Format("2006-01-02 15:04"))
	sb.WriteString(weekendDisclaimer)

	return publish.TruncateKeeping(sb.String(), weekendDisclaimer)
}

func (b *Bot) prediction(symbol string) string {
	options, ok := weekendPredictions[symbol]
	if !ok {
		return fmt.Sprintf("%s trading range expected to hold", symbol)
	}
	return options[b.rng.Intn(len(options))]
}
