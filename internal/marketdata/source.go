package marketdata

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// maxVariation bounds the per-quote random walk around a symbol's base
// price.
const maxVariation = 0.01

var minSpread = decimal.New(1, -2)

// Source simulates a live price feed: every quote is the symbol's base
// price nudged by up to ±1% and rounded to 2 decimals. Unknown symbols are
// a not-found condition the caller must treat as "skip this tick", never as
// a reason to cancel an order.
type Source struct {
	mu    sync.Mutex
	bases map[string]decimal.Decimal
	rng   *rand.Rand
}

func defaultBases() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"AAPL":  decimal.NewFromInt(175),
		"GOOGL": decimal.NewFromInt(140),
		"MSFT":  decimal.NewFromInt(380),
		"AMZN":  decimal.NewFromInt(155),
		"TSLA":  decimal.NewFromInt(245),
		"NVDA":  decimal.NewFromInt(485),
		"META":  decimal.NewFromInt(450),
		"JPM":   decimal.NewFromInt(160),
		"V":     decimal.NewFromInt(270),
		"WMT":   decimal.NewFromInt(68),
		"SPY":   decimal.NewFromInt(470),
		"QQQ":   decimal.NewFromInt(395),
	}
}

// NewSource builds a feed with the built-in symbols plus any extras from
// configuration. Extras override built-ins on symbol collision.
func NewSource(extra map[string]decimal.Decimal) *Source {
	bases := defaultBases()
	for symbol, base := range extra {
		bases[symbol] = base
	}
	return &Source{
		bases: bases,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Source) CurrentPrice(symbol string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.bases[symbol]
	if !ok {
		return decimal.Decimal{}, types.NotFound("Symbol", symbol)
	}
	variation := s.rng.Float64()*2*maxVariation - maxVariation
	return base.Mul(decimal.NewFromFloat(1 + variation)).Round(2), nil
}

// Quote is one simulated tick for a symbol. Bid and ask straddle the last
// price by a thin synthetic spread.
type Quote struct {
	Symbol    string          `json:"symbol"`
	LastPrice decimal.Decimal `json:"lastPrice"`
	BidPrice  decimal.Decimal `json:"bidPrice"`
	AskPrice  decimal.Decimal `json:"askPrice"`
	QuoteTime time.Time       `json:"quoteTime"`
}

func (s *Source) Quote(symbol string) (Quote, error) {
	last, err := s.CurrentPrice(symbol)
	if err != nil {
		return Quote{}, err
	}
	spread := last.Mul(decimal.NewFromFloat(0.0001)).Round(2)
	if spread.LessThan(minSpread) {
		spread = minSpread
	}
	return Quote{
		Symbol:    symbol,
		LastPrice: last,
		BidPrice:  last.Sub(spread),
		AskPrice:  last.Add(spread),
		QuoteTime: time.Now().UTC(),
	}, nil
}

func (s *Source) AddSymbol(symbol string, base decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bases[symbol] = base
}

func (s *Source) HasSymbol(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bases[symbol]
	return ok
}

func (s *Source) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.bases))
	for symbol := range s.bases {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
