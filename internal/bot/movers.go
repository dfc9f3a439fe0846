package bot

import (
	"math"
	"sort"

	"github.com/marketbat/marketbat/internal/market"
)

// maxMovers bounds how many symbols make it into a post; more than
// this does not fit the platform length limit with headlines attached.
const maxMovers = 3

// Mover is a watchlist symbol selected for a market update post.
type Mover struct {
	Symbol    string
	Price     float64
	Change    float64
	ChangePct float64
	Headline  string
}

// topMovers picks the n quotes with the largest absolute percentage
// move, biggest first.
func topMovers(quotes []market.Quote, n int) []Mover {
	sorted := make([]market.Quote, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].ChangePct) > math.Abs(sorted[j].ChangePct)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	movers := make([]Mover, 0, n)
	for _, q := range sorted[:n] {
		movers = append(movers, Mover{
			Symbol:    q.Symbol,
			Price:     q.Price,
			Change:    q.Change,
			ChangePct: q.ChangePct,
		})
	}
	return movers
}
